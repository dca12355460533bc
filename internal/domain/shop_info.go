package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// DefaultShopName is used when the shop record is created lazily
const DefaultShopName = "Krishna Digital World"

// ShopSingletonKey is the constant value of the unique partition column.
// Only one ShopInfo row can ever carry it.
const ShopSingletonKey = "default"

// Location is one physical outlet of the shop
type Location struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	MapURL  string `json:"mapUrl,omitempty"`
}

// Locations is always a list, whatever the column holds
type Locations []Location

// NormalizeLocations coerces a raw stored or submitted value into a list.
// nil, "null", unparseable text and non-list JSON all become an empty list.
// A JSON string wrapping a list is unwrapped once.
func NormalizeLocations(raw any) Locations {
	switch v := raw.(type) {
	case nil:
		return Locations{}
	case Locations:
		if v == nil {
			return Locations{}
		}
		return v
	case []Location:
		if v == nil {
			return Locations{}
		}
		return Locations(v)
	case []byte:
		return parseLocations(v, 1) // Column bytes from the driver
	case string:
		return parseLocations([]byte(v), 1)
	default:
		return Locations{} // Objects, numbers and the rest
	}
}

func parseLocations(b []byte, unwrap int) Locations {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return Locations{}
	}
	var list []Location
	if err := json.Unmarshal(b, &list); err == nil {
		if list == nil {
			return Locations{} // JSON null
		}
		return list
	}
	var inner string // Double-encoded legacy value
	if unwrap > 0 && json.Unmarshal(b, &inner) == nil {
		return parseLocations([]byte(inner), unwrap-1)
	}
	return Locations{}
}

// Scan implements sql.Scanner for non-NULL columns. It never fails.
// NULL columns are handled by ShopInfo.AfterFind.
func (l *Locations) Scan(value any) error {
	*l = NormalizeLocations(value)
	return nil
}

// Value implements driver.Valuer
func (l Locations) Value() (driver.Value, error) {
	if l == nil {
		l = Locations{}
	}
	b, err := json.Marshal([]Location(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil // Stored as text
}

func (l Locations) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Location(l))
}

// UnmarshalJSON accepts a list or a JSON-encoded string holding a list
func (l *Locations) UnmarshalJSON(b []byte) error {
	*l = NormalizeLocations(b)
	return nil
}

// SocialLinks holds the shop's social media profiles
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Youtube   string `json:"youtube,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
}

func (s *SocialLinks) Scan(value any) error {
	*s = SocialLinks{}
	scanJSON(value, s)
	return nil
}

func (s SocialLinks) Value() (driver.Value, error) {
	return valueJSON(s)
}

// DayHours is the opening window of a single weekday
type DayHours struct {
	Open   string `json:"open,omitempty"`  // HH:MM
	Close  string `json:"close,omitempty"` // HH:MM
	Closed bool   `json:"closed,omitempty"`
}

// BusinessHours has one entry per weekday; a nil day is unspecified
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

func (b *BusinessHours) Scan(value any) error {
	*b = BusinessHours{}
	scanJSON(value, b)
	return nil
}

func (b BusinessHours) Value() (driver.Value, error) {
	return valueJSON(b)
}

// scanJSON decodes a JSON column into dest, leaving dest untouched on bad data
func scanJSON(value any, dest any) {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return
	}
	_ = json.Unmarshal(raw, dest) // Bad data reads as empty
}

func valueJSON(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ShopInfo Model, a single row describing the storefront
type ShopInfo struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	SingletonKey   string        `gorm:"size:20;uniqueIndex;not null" json:"-"` // Always ShopSingletonKey
	ShopName       string        `gorm:"size:200;not null" json:"shopName"`     // Signs outgoing SMS
	Email          string        `gorm:"size:100" json:"email"`
	Phone          string        `gorm:"size:20" json:"phone"`
	AlternatePhone string        `gorm:"size:20" json:"alternatePhone"`
	WhatsappNumber string        `gorm:"size:20" json:"whatsappNumber"`
	SupportEmail   string        `gorm:"size:100" json:"supportEmail"`
	SupportPhone   string        `gorm:"size:20" json:"supportPhone"`
	Address        string        `gorm:"type:text" json:"address"`
	City           string        `gorm:"size:100" json:"city"`
	State          string        `gorm:"size:100" json:"state"`
	Pincode        string        `gorm:"size:10" json:"pincode"`
	Country        string        `gorm:"size:100;default:India" json:"country"`
	Locations      Locations     `gorm:"type:text" json:"locations"`           // Always a list
	SocialMedia    SocialLinks   `gorm:"type:text" json:"socialMedia"`
	BusinessHours  BusinessHours `gorm:"type:text" json:"businessHours"`
	Description    string        `gorm:"type:text" json:"description"`
	MapEmbedURL    string        `gorm:"type:text" json:"mapEmbedUrl"`
	LogoURL        string        `gorm:"size:500" json:"logoUrl"`
	FaviconURL     string        `gorm:"size:500" json:"faviconUrl"`
	Currency       string        `gorm:"size:10;default:INR" json:"currency"`
	GSTNumber      string        `gorm:"size:50" json:"gstNumber"`             // Staff only, not in the public view
	IsActive       bool          `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// AfterFind keeps Locations a list when the column is NULL
func (s *ShopInfo) AfterFind(tx *gorm.DB) error {
	s.Locations = NormalizeLocations(s.Locations) // nil becomes []
	return nil
}

// NewDefaultShopInfo returns the record created on first read
func NewDefaultShopInfo() *ShopInfo {
	return &ShopInfo{
		SingletonKey: ShopSingletonKey,
		ShopName:     DefaultShopName,
		Locations:    Locations{},
		IsActive:     true,
	}
}

// PublicShopInfo is the allow-listed view served without authentication
type PublicShopInfo struct {
	ShopName       string        `json:"shopName"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	AlternatePhone string        `json:"alternatePhone"`
	Address        string        `json:"address"`
	City           string        `json:"city"`
	State          string        `json:"state"`
	Pincode        string        `json:"pincode"`
	Country        string        `json:"country"`
	Locations      Locations     `json:"locations"`
	SocialMedia    SocialLinks   `json:"socialMedia"`
	BusinessHours  BusinessHours `json:"businessHours"`
	Description    string        `json:"description"`
	MapEmbedURL    string        `json:"mapEmbedUrl"`
	LogoURL        string        `json:"logoUrl"`
	SupportEmail   string        `json:"supportEmail"`
	SupportPhone   string        `json:"supportPhone"`
	WhatsappNumber string        `json:"whatsappNumber"`
}

// Public projects the record onto the public allow-list
func (s *ShopInfo) Public() PublicShopInfo {
	return PublicShopInfo{
		ShopName:       s.ShopName,
		Email:          s.Email,
		Phone:          s.Phone,
		AlternatePhone: s.AlternatePhone,
		Address:        s.Address,
		City:           s.City,
		State:          s.State,
		Pincode:        s.Pincode,
		Country:        s.Country,
		Locations:      NormalizeLocations(s.Locations),
		SocialMedia:    s.SocialMedia,
		BusinessHours:  s.BusinessHours,
		Description:    s.Description,
		MapEmbedURL:    s.MapEmbedURL,
		LogoURL:        s.LogoURL,
		SupportEmail:   s.SupportEmail,
		SupportPhone:   s.SupportPhone,
		WhatsappNumber: s.WhatsappNumber,
	}
}

// ShopInfoUpdate is a partial write. Nil fields are left alone; nested
// objects (socialMedia, businessHours) replace the stored object whole.
type ShopInfoUpdate struct {
	ShopName       *string        `json:"shopName" binding:"omitempty,min=1,max=200"`
	Email          *string        `json:"email" binding:"omitempty,email,max=100"`
	Phone          *string        `json:"phone" binding:"omitempty,max=20"`
	AlternatePhone *string        `json:"alternatePhone" binding:"omitempty,max=20"`
	WhatsappNumber *string        `json:"whatsappNumber" binding:"omitempty,max=20"`
	SupportEmail   *string        `json:"supportEmail" binding:"omitempty,email,max=100"`
	SupportPhone   *string        `json:"supportPhone" binding:"omitempty,max=20"`
	Address        *string        `json:"address"`
	City           *string        `json:"city" binding:"omitempty,max=100"`
	State          *string        `json:"state" binding:"omitempty,max=100"`
	Pincode        *string        `json:"pincode" binding:"omitempty,max=10"`
	Country        *string        `json:"country" binding:"omitempty,max=100"`
	Locations      *Locations     `json:"locations"`
	SocialMedia    *SocialLinks   `json:"socialMedia"`
	BusinessHours  *BusinessHours `json:"businessHours"`
	Description    *string        `json:"description"`
	MapEmbedURL    *string        `json:"mapEmbedUrl"`
	LogoURL        *string        `json:"logoUrl" binding:"omitempty,max=500"`
	FaviconURL     *string        `json:"faviconUrl" binding:"omitempty,max=500"`
	Currency       *string        `json:"currency" binding:"omitempty,max=10"`
	GSTNumber      *string        `json:"gstNumber" binding:"omitempty,max=50"`
}

// ApplyTo copies every present field onto s and returns the names of the
// fields it touched, ready for a gorm Select.
func (u *ShopInfoUpdate) ApplyTo(s *ShopInfo) []string {
	var fields []string
	setString := func(name string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			fields = append(fields, name)
		}
	}
	setString("ShopName", u.ShopName, &s.ShopName)
	setString("Email", u.Email, &s.Email)
	setString("Phone", u.Phone, &s.Phone)
	setString("AlternatePhone", u.AlternatePhone, &s.AlternatePhone)
	setString("WhatsappNumber", u.WhatsappNumber, &s.WhatsappNumber)
	setString("SupportEmail", u.SupportEmail, &s.SupportEmail)
	setString("SupportPhone", u.SupportPhone, &s.SupportPhone)
	setString("Address", u.Address, &s.Address)
	setString("City", u.City, &s.City)
	setString("State", u.State, &s.State)
	setString("Pincode", u.Pincode, &s.Pincode)
	setString("Country", u.Country, &s.Country)
	setString("Description", u.Description, &s.Description)
	setString("MapEmbedURL", u.MapEmbedURL, &s.MapEmbedURL)
	setString("LogoURL", u.LogoURL, &s.LogoURL)
	setString("FaviconURL", u.FaviconURL, &s.FaviconURL)
	setString("Currency", u.Currency, &s.Currency)
	setString("GSTNumber", u.GSTNumber, &s.GSTNumber)
	if u.Locations != nil {
		s.Locations = NormalizeLocations(*u.Locations)
		fields = append(fields, "Locations")
	}
	if u.SocialMedia != nil {
		s.SocialMedia = *u.SocialMedia
		fields = append(fields, "SocialMedia")
	}
	if u.BusinessHours != nil {
		s.BusinessHours = *u.BusinessHours
		fields = append(fields, "BusinessHours")
	}
	return fields
}
