// internal/models/tea.go
package models

type Tea struct {
	BaseModel
	Name     string    `json:"name" gorm:"size:200;not null"`
	Category string    `json:"category" gorm:"size:50;not null;index"`
	Year     int       `json:"year" gorm:"not null"`
	Origin   string    `json:"origin" gorm:"size:200;not null"`
	Spec     string    `json:"spec" gorm:"size:80;not null"`
	PriceMin *int      `json:"price_min"`
	PriceMax *int      `json:"price_max"`
	Intro    *string   `json:"intro" gorm:"type:text"`
	CoverURL string    `json:"cover_url" gorm:"type:text;not null"`
	Status   TeaStatus `json:"status" gorm:"type:varchar(20);default:'online';index"`
	Weight   int       `json:"weight" gorm:"default:0"`
}

func (Tea) TableName() string {
	return "tea"
}

// TeaBase is the writable part of a tea, shared by admin create/update and
// spreadsheet import.
type TeaBase struct {
	Name     string    `json:"name" binding:"required" validate:"required,max=200"`
	Category string    `json:"category" binding:"required" validate:"required,max=50"`
	Year     int       `json:"year" binding:"required" validate:"required,gt=0"`
	Origin   string    `json:"origin" binding:"required" validate:"required,max=200"`
	Spec     string    `json:"spec" binding:"required" validate:"required,max=80"`
	PriceMin *int      `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax *int      `json:"price_max" validate:"omitempty,gte=0"`
	Intro    *string   `json:"intro"`
	CoverURL string    `json:"cover_url" binding:"required" validate:"required"`
	Status   TeaStatus `json:"status" validate:"omitempty,oneof=online offline"`
	Weight   int       `json:"weight"`
}

// Normalize fills defaults the JSON payload may omit.
func (b *TeaBase) Normalize() {
	if b.Status == "" {
		b.Status = TeaStatusOnline
	}
}

func (b TeaBase) Apply(t *Tea) {
	t.Name = b.Name
	t.Category = b.Category
	t.Year = b.Year
	t.Origin = b.Origin
	t.Spec = b.Spec
	t.PriceMin = b.PriceMin
	t.PriceMax = b.PriceMax
	t.Intro = b.Intro
	t.CoverURL = b.CoverURL
	t.Status = b.Status
	t.Weight = b.Weight
}
