package handler

import (
	"time"

	"github.com/iliyamo/publicvoice/internal/model"
)

// UploadsPrefix is the URL path under which avatar files are served.
const UploadsPrefix = "/uploads/"

type userResp struct {
	ID              uint64    `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	ProfileImageURL *string   `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

func toUser(u *model.User) userResp {
	r := userResp{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
	if u.ProfileImage != nil && *u.ProfileImage != "" {
		url := UploadsPrefix + *u.ProfileImage
		r.ProfileImageURL = &url
	}
	return r
}

func toUsers(us []*model.User) []userResp {
	out := make([]userResp, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

type reportResp struct {
	ID                    uint64    `json:"id"`
	UserID                *uint64   `json:"user_id"`
	Title                 *string   `json:"title"`
	Name                  string    `json:"name"`
	Phone                 string    `json:"phone"`
	Location              string    `json:"location"`
	Institution           string    `json:"institution"`
	Category              string    `json:"category"`
	RawDescription        string    `json:"raw_description"`
	StructuredDescription *string   `json:"structured_description"`
	AdminResponse         *string   `json:"admin_response"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toReport(r *model.Report) reportResp {
	return reportResp{
		ID:                    r.ID,
		UserID:                r.UserID,
		Title:                 r.Title,
		Name:                  r.Name,
		Phone:                 r.Phone,
		Location:              r.Location,
		Institution:           r.Institution,
		Category:              r.Category,
		RawDescription:        r.RawDescription,
		StructuredDescription: r.StructuredDescription,
		AdminResponse:         r.AdminResponse,
		Status:                string(r.Status),
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toReports(rs []*model.Report) []reportResp {
	out := make([]reportResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReport(r))
	}
	return out
}
