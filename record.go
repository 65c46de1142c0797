package adcrawl

import "strings"

// Sentinel is the value of every field that could not be extracted.
const Sentinel = "-"

// Field identifies a column of a listing record.
// The declaration order is the column order of the output file.
type Field int

const (
	FieldPosted Field = iota
	FieldLink
	FieldName
	FieldPrice
	FieldLocation
	FieldSeller
	FieldPhone
	FieldSeats
	FieldKilometres
	FieldBodyStyle
	FieldDoors
	FieldTransmission
	FieldModel
	FieldExtraInfo
	FieldFuel

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldPosted:       "Duration Posted",
	FieldLink:         "Listing Link",
	FieldName:         "Name",
	FieldPrice:        "Price",
	FieldLocation:     "Location",
	FieldSeller:       "Seller Name",
	FieldPhone:        "Phone",
	FieldSeats:        "Seats",
	FieldKilometres:   "Kilometres",
	FieldBodyStyle:    "Body Style",
	FieldDoors:        "Doors",
	FieldTransmission: "Transmission",
	FieldModel:        "Model",
	FieldExtraInfo:    "Extra Info",
	FieldFuel:         "Fuel",
}

// String returns the column name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "Unknown"
	}
	return fieldNames[f]
}

// Fields returns all fields in column order.
func Fields() []Field {
	fields := make([]Field, fieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Header returns a fresh copy of the column names in column order.
func Header() []string {
	return append([]string(nil), fieldNames[:]...)
}

// Record is the data captured from one listing page.
// Every field is always present; fields that could not be extracted hold
// Sentinel.
type Record struct {
	values [fieldCount]string
}

// NewRecord returns a record for the listing at link with every other field
// set to Sentinel.
func NewRecord(link string) *Record {
	r := &Record{}
	for i := range r.values {
		r.values[i] = Sentinel
	}
	r.Set(FieldLink, link)
	return r
}

// Set stores v in field f. Blank values leave the field unchanged.
func (r *Record) Set(f Field, v string) {
	if f < 0 || f >= fieldCount || strings.TrimSpace(v) == "" {
		return
	}
	r.values[f] = v
}

// Get returns the value of field f.
func (r *Record) Get(f Field) string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return r.values[f]
}

// Row returns the field values in column order.
func (r *Record) Row() []string {
	row := make([]string, fieldCount)
	copy(row, r.values[:])
	return row
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// SpreadsheetSafe trims v and prefixes a space when it starts with '+' or
// '-' so spreadsheet programs do not read it as a formula.
func SpreadsheetSafe(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		return " " + v
	}
	return v
}
