package models

type DriverStats struct {
	ActiveRoutes    int     `json:"activeRoutes"`
	TotalBookings   int     `json:"totalBookings"`
	PendingBookings int     `json:"pendingBookings"`
	CompletedTrips  int     `json:"completedTrips"`
	Earnings        float64 `json:"earnings"`
	Rating          float64 `json:"rating"`
	TotalReviews    int     `json:"totalReviews"`
}

type CustomerStats struct {
	TotalBookings  int     `json:"totalBookings"`
	CompletedTrips int     `json:"completedTrips"`
	TotalSpent     float64 `json:"totalSpent"`
}
