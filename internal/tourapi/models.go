package tourapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result codes of the tourism API header.
const (
	ResultOK     = "0000"
	ResultNoData = "03"
)

// ContentTypeAttraction is the contentTypeId of tourist attractions.
const ContentTypeAttraction = "12"

// Envelope is the JSON wrapper every endpoint answers with.
type Envelope struct {
	Response struct {
		Header Header `json:"header"`
		Body   Body   `json:"body"`
	} `json:"response"`
}

type Header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

type Body struct {
	Items      Items   `json:"items"`
	NumOfRows  FlexInt `json:"numOfRows"`
	PageNo     FlexInt `json:"pageNo"`
	TotalCount FlexInt `json:"totalCount"`
}

// FlexInt decodes integers sent either as JSON numbers or as strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*f = FlexInt(v)
	return nil
}

// RawItem is one upstream item, read by field name.
type RawItem map[string]interface{}

// String returns the field as a string, or "" when missing. Numbers are formatted
// without exponent.
func (r RawItem) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns the field parsed as a float, or 0.
func (r RawItem) Float(key string) float64 {
	f, err := strconv.ParseFloat(r.String(key), 64)
	if err != nil {
		return 0
	}
	return f
}

// Items accepts the three shapes the API uses for the item list: an empty string when
// there are no rows, a single object, or an array.
type Items []RawItem

func (it *Items) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || bytes.Equal(data, []byte("null")) {
		*it = Items{}
		return nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("unexpected items shape: %w", err)
	}

	raw := bytes.TrimSpace(wrapper.Item)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*it = Items{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if raw[0] == '[' {
		var list []RawItem
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("failed to decode item list: %w", err)
		}
		*it = list
		return nil
	}

	var single RawItem
	if err := dec.Decode(&single); err != nil {
		return fmt.Errorf("failed to decode item: %w", err)
	}
	*it = Items{single}
	return nil
}

// TourItem is the normalized form of a list item.
type TourItem struct {
	ContentID     string  `json:"contentId"`
	ContentTypeID string  `json:"contentTypeId"`
	Title         string  `json:"title"`
	Addr1         string  `json:"addr1"`
	Addr2         string  `json:"addr2"`
	FirstImage    string  `json:"firstImage"`
	FirstImage2   string  `json:"firstImage2"`
	Cat1          string  `json:"cat1"`
	Cat2          string  `json:"cat2"`
	Cat3          string  `json:"cat3"`
	AreaCode      string  `json:"areaCode"`
	SigunguCode   string  `json:"sigunguCode"`
	MapX          float64 `json:"mapX"`
	MapY          float64 `json:"mapY"`
	Tel           string  `json:"tel"`
	ModifiedTime  string  `json:"modifiedTime"`
}

// ToTourItem normalizes a raw list item.
func (r RawItem) ToTourItem() TourItem {
	return TourItem{
		ContentID:     r.String("contentid"),
		ContentTypeID: r.String("contenttypeid"),
		Title:         r.String("title"),
		Addr1:         r.String("addr1"),
		Addr2:         r.String("addr2"),
		FirstImage:    r.String("firstimage"),
		FirstImage2:   r.String("firstimage2"),
		Cat1:          r.String("cat1"),
		Cat2:          r.String("cat2"),
		Cat3:          r.String("cat3"),
		AreaCode:      r.String("areacode"),
		SigunguCode:   r.String("sigungucode"),
		MapX:          r.Float("mapx"),
		MapY:          r.Float("mapy"),
		Tel:           r.String("tel"),
		ModifiedTime:  r.String("modifiedtime"),
	}
}

// ModifiedYear returns the year of ModifiedTime (yyyyMMddHHmmss), or 0.
func (t TourItem) ModifiedYear() int {
	if len(t.ModifiedTime) < 4 {
		return 0
	}
	year, err := strconv.Atoi(t.ModifiedTime[:4])
	if err != nil {
		return 0
	}
	return year
}

// Page is one page of list results.
type Page struct {
	Items      []TourItem `json:"items"`
	TotalCount int        `json:"totalCount"`
	PageNo     int        `json:"pageNo"`
	NumOfRows  int        `json:"numOfRows"`
}

// TourDetail is the common detail record of one content id.
type TourDetail struct {
	TourItem
	Homepage string `json:"homepage"`
	Overview string `json:"overview"`
	Zipcode  string `json:"zipcode"`
	TelName  string `json:"telName"`
}

// RegionCode is one entry of the areaCode endpoint.
type RegionCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rnum int    `json:"rnum"`
}

// ListQuery holds the filter parameters of list endpoints. Empty fields are omitted.
type ListQuery struct {
	AreaCode      string
	SigunguCode   string
	ContentTypeID string
	Cat1          string
	Cat2          string
	Cat3          string
	NumOfRows     int
	PageNo        int
	Arrange       string
}

func pageFromBody(body Body) *Page {
	page := &Page{
		Items:      make([]TourItem, 0, len(body.Items)),
		TotalCount: int(body.TotalCount),
		PageNo:     int(body.PageNo),
		NumOfRows:  int(body.NumOfRows),
	}
	for _, raw := range body.Items {
		item := raw.ToTourItem()
		if item.ContentID == "" {
			continue
		}
		page.Items = append(page.Items, item)
	}
	return page
}
