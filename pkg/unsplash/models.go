package unsplash

// Photo is the subset of the Unsplash photo object used by the fetcher
type Photo struct {
	ID             string `json:"id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Description    string `json:"description"`
	CreatedAt      string `json:"created_at"`
	AltDescription string `json:"alt_description"`
	URLs           URLs   `json:"urls"`
	User           User   `json:"user"`
	Links          Links  `json:"links"`
}

// URLs holds the size variants offered for a photo
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// User is the photographer
type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Links    UserLinks `json:"links"`
}

// UserLinks are the photographer's profile links
type UserLinks struct {
	HTML string `json:"html"`
}

// Links are the photo's own links
type Links struct {
	HTML             string `json:"html"`
	Download         string `json:"download"`
	DownloadLocation string `json:"download_location"`
}

// Caption returns the best available human description of the photo
func (p *Photo) Caption() string {
	if p.Description != "" {
		return p.Description
	}
	return p.AltDescription
}
