package models

import (
	"time"

	"github.com/evidenceledger/noticegen/internal/notice"
)

// NoticeForm is the body posted by the notice form.
type NoticeForm struct {
	Type            string `form:"type" json:"type"`
	LandlordName    string `form:"landlordName" json:"landlordName"`
	LandlordAddress string `form:"landlordAddress" json:"landlordAddress"`
	TenantName      string `form:"tenantName" json:"tenantName"`
	TenantAddress   string `form:"tenantAddress" json:"tenantAddress"`
	PropertyAddress string `form:"propertyAddress" json:"propertyAddress"`
	TenancyStart    string `form:"tenancyStart" json:"tenancyStart"`
	NoticeEnd       string `form:"noticeEnd" json:"noticeEnd"`
	Reason          string `form:"reason" json:"reason"`
}

// Fields returns the raw field mapping expected by notice.Validate.
func (f *NoticeForm) Fields() map[string]string {
	return map[string]string{
		notice.KeyLandlordName:    f.LandlordName,
		notice.KeyLandlordAddress: f.LandlordAddress,
		notice.KeyTenantName:      f.TenantName,
		notice.KeyTenantAddress:   f.TenantAddress,
		notice.KeyPropertyAddress: f.PropertyAddress,
		notice.KeyTenancyStart:    f.TenancyStart,
		notice.KeyNoticeEnd:       f.NoticeEnd,
		notice.KeyReason:          f.Reason,
	}
}

// Issuance records that the notice paid for in a session was delivered.
// It deliberately holds no form contents.
type Issuance struct {
	SessionID  string    `json:"session_id"`
	NoticeType string    `json:"notice_type"`
	Price      int64     `json:"price"`
	Downloads  int       `json:"downloads"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
