package models

// PageData is handed to the html templates.
type PageData struct {
	Username   string
	Tasks      []Task
	Task       *Task
	Content    string
	CSRFtoken  string
	Error      string
	Notice     string
	IsLoggedIn bool
}
