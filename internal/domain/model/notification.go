package model

// DownloadNotification is handed to the notifier once an order is paid.
type DownloadNotification struct {
	OrderID     string
	Email       string
	BookTitle   string
	DownloadURL string
}
