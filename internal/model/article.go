package model

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const DefaultCategory = "general"

var Categories = []Category{
	{ID: "general", Name: "General"},
	{ID: "business", Name: "Business"},
	{ID: "technology", Name: "Technology"},
	{ID: "science", Name: "Science"},
	{ID: "health", Name: "Health"},
}

func IsCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
