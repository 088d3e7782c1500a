package models

// Movie is one row of the cleaned dataset. Title is the identity used for
// deduplication but is not guaranteed unique in the source data.
type Movie struct {
	Title        string  `json:"title"`
	Year         int     `json:"year"`
	Genre        string  `json:"genre"`
	Director     string  `json:"director"`
	Overview     string  `json:"overview"`
	Certificates string  `json:"certificates"`
	Metascore    string  `json:"metascore"`
	Rating       float64 `json:"rating"`
	Cast         string  `json:"cast"`
	Poster       string  `json:"poster"`
	Duration     int     `json:"duration"`
	Description  string  `json:"description"`
}

// Document is the unit handed to the index builder: the generated
// description plus the source title, nothing hidden.
type Document struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Hit is a nearest-neighbor search result.
type Hit struct {
	Text       string  `json:"text"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// YearRange is an inclusive year filter parsed from free text.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether y falls inside the range.
func (r YearRange) Contains(y int) bool {
	return y >= r.Start && y <= r.End
}
