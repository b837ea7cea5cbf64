package user

import "github.com/Till769/zero2prod/internal/models"

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		Mail:          u.Mail,
		LastLoginTime: u.LastLoginTime,
		LastLoginIP:   u.LastLoginIP,
	}
}

func toTokenResponse(t *models.APIToken) tokenResponse {
	return tokenResponse{
		ID:        t.ID,
		Name:      t.Name,
		Token:     t.Token,
		ExpiredAt: t.ExpiredAt,
		Created:   t.CreatedAt,
	}
}
