package models

import (
	"encoding/json"

	"wardrobeapi/languageutil"
	"wardrobeapi/recommender"

	"github.com/go-playground/validator"
)

const (
	ProcessingIdle      = "idle"
	ProcessingPending   = "pending"
	ProcessingCompleted = "completed"
	ProcessingFailed    = "failed"
)

// MaxProcessRetries is how many analysis attempts a photo gets before it is marked failed.
const MaxProcessRetries = 3

type Clothing struct {
	JsonModel
	Name         string      `json:"name"`
	Description  *string     `gorm:"type:text" json:"description"`
	Category     string      `json:"category"` // top, bottom, outerwear, shoes, accessory, other
	PrimaryColor string      `json:"primary_color"`
	Style        string      `json:"style"`
	Material     string      `json:"material"`
	Owner        UserAccount `json:"-"`
	OwnerID      uint        `gorm:"index" json:"-"`
	// JSON arrays written by this service; older rows may hold delimited text
	SuitableSeasons     string  `gorm:"type:text" json:"-"`
	SuitableOccasions   string  `gorm:"type:text" json:"-"`
	ImageURL            *string `json:"image_url"`
	UsageCount          int     `gorm:"default:0" json:"usage_count"`
	ProcessingStatus    string  `gorm:"default:idle" json:"processing_status"`
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func (c *Clothing) SetSeasons(tags []string) {
	c.SuitableSeasons = encodeTags(tags)
}

func (c *Clothing) SetOccasions(tags []string) {
	c.SuitableOccasions = encodeTags(tags)
}

func (c Clothing) Seasons() recommender.Attribute {
	return recommender.AttributeRaw(c.SuitableSeasons)
}

func (c Clothing) Occasions() recommender.Attribute {
	return recommender.AttributeRaw(c.SuitableOccasions)
}

// ToItem snapshots the row for the recommendation engine. imageURL is the
// presigned URL to expose, if any.
func (c Clothing) ToItem(imageURL *string) recommender.ClothingItem {
	return recommender.ClothingItem{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Name:         c.Name,
		Category:     recommender.ParseCategory(c.Category),
		PrimaryColor: c.PrimaryColor,
		Style:        c.Style,
		Material:     c.Material,
		Seasons:      c.Seasons(),
		Occasions:    c.Occasions(),
		UsageCount:   c.UsageCount,
		ImageURL:     imageURL,
	}
}

// ValidateCategory accepts any known category label, including the Chinese aliases.
func ValidateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if recommender.ParseCategory(value) != recommender.CategoryOther {
		return true
	}
	folded := languageutil.Fold(value)
	return folded == "other" || folded == "其他"
}

type FavoriteOutfit struct {
	JsonModel
	UserAccountID uint        `gorm:"index" json:"-"`
	UserAccount   UserAccount `json:"-"`
	// serialized recommender.RankedOutfit as submitted by the client
	OutfitData string  `gorm:"type:text" json:"-"`
	Score      float64 `json:"score"`
}
