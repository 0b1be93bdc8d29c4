package domain

// The category hierarchy is three parallel levels: Head -> Sub -> Micro.
// Each level has its own table and its own slug namespace; the slug is the
// external routing key for search paths.

// HeadCategory is the top hierarchy level.
type HeadCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SubCategory belongs to a head category.
type SubCategory struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	HeadCategoryID int64  `json:"head_category_id"`
}

// MicroCategory belongs to a sub category and is the most specific level.
type MicroCategory struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	SubCategoryID int64  `json:"sub_category_id"`
}
