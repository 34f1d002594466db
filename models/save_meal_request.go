package models

// SaveMealRequest is the JSON body of POST /save_meal.
type SaveMealRequest struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Image    string `json:"image"`
}

// ImageFile is a binary image sent as the multipart "image" field.
type ImageFile struct {
	Name     string
	MimeType string
	Data     []byte
}
