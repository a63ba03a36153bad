package domain

// Info - сообщение о нарушении движения
type Info struct {
	Priority  string     `json:"priority"`
	ID        string     `json:"id"`
	Version   int        `json:"version"`
	Type      string     `json:"type"`
	InfoLinks []InfoLink `json:"infoLinks"`
}

// InfoLink - текст сообщения, Content может содержать HTML
type InfoLink struct {
	URLText  string `json:"urlText"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Subtitle string `json:"subtitle"`
	Title    string `json:"title,omitempty"`
}
