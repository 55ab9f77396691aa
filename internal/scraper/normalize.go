package scraper

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// rawListing mirrors the upstream feed's nested listing shape. Only the
// fields we keep are declared; everything else is ignored on decode.
type rawListing struct {
	OrderID int64  `json:"orderId"`
	Token   string `json:"token"`
	Address struct {
		City         textField `json:"city"`
		Area         textField `json:"area"`
		Neighborhood textField `json:"neighborhood"`
		Street       textField `json:"street"`
		House        struct {
			Number *int `json:"number"`
			Floor  *int `json:"floor"`
		} `json:"house"`
		Coords struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"coords"`
	} `json:"address"`
	Price             *int `json:"price"`
	PriceBeforeTag    *int `json:"priceBeforeTag"`
	AdditionalDetails struct {
		Property          textField `json:"property"`
		RoomsCount        *float64  `json:"roomsCount"`
		SquareMeter       *int      `json:"squareMeter"`
		PropertyCondition struct {
			ID *int `json:"id"`
		} `json:"propertyCondition"`
	} `json:"additionalDetails"`
	MetaData struct {
		CoverImage string   `json:"coverImage"`
		Images     []string `json:"images"`
	} `json:"metaData"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

type textField struct {
	Text string `json:"text"`
}

// feedEnums carries upstream enum tables; condition ids resolve to
// display text through it.
type feedEnums struct {
	PropertyCondition map[string]string `json:"propertyCondition"`
}

// normalize maps a raw feed listing onto the canonical model. Hebrew
// strings arrive in mixed unicode forms from different feed pages, so
// every text field goes through NFC before storage — otherwise the same
// city can land in the database under two byte representations.
func normalize(raw rawListing, enums feedEnums, sourceURL string) model.Listing {
	tags := make(model.TagList, 0, len(raw.Tags))
	for _, t := range raw.Tags {
		if name := cleanText(t.Name); name != "" {
			tags = append(tags, name)
		}
	}

	condition := ""
	if id := raw.AdditionalDetails.PropertyCondition.ID; id != nil {
		condition = cleanText(enums.PropertyCondition[strconv.Itoa(*id)])
	}

	return model.Listing{
		ID:           raw.OrderID,
		Token:        raw.Token,
		OriginalURL:  sourceURL,
		City:         cleanText(raw.Address.City.Text),
		Area:         cleanText(raw.Address.Area.Text),
		Neighborhood: cleanText(raw.Address.Neighborhood.Text),
		Street:       cleanText(raw.Address.Street.Text),
		HouseNumber:  raw.Address.House.Number,
		Floor:        raw.Address.House.Floor,
		Lat:          raw.Address.Coords.Lat,
		Lon:          raw.Address.Coords.Lon,
		Price:        raw.Price,
		PriceBefore:  raw.PriceBeforeTag,
		PropertyType: cleanText(raw.AdditionalDetails.Property.Text),
		Rooms:        raw.AdditionalDetails.RoomsCount,
		Size:         raw.AdditionalDetails.SquareMeter,
		ConditionID:  raw.AdditionalDetails.PropertyCondition.ID,
		Condition:    condition,
		CoverImage:   raw.MetaData.CoverImage,
		Images:       raw.MetaData.Images,
		Tags:         tags,
	}
}

// cleanText trims and NFC-normalizes a scraped string.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
