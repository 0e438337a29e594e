package repository

import (
	"context"
	"time"

	"civiclens-be/models"
)

func photo(url string) *string { return &url }

// SeedIssues returns the demo reports the development backend starts with.
func SeedIssues(now time.Time) []models.IssueReport {
	day := 24 * time.Hour
	return []models.IssueReport{
		{
			Category:    models.Pothole,
			Description: "Large pothole on the main road, very dangerous for cyclists.",
			Address:     "123 Main St, Los Angeles, CA 90001",
			Location:    models.Location{Lat: 34.0522, Lng: -118.2437},
			PhotoURL:    photo("https://picsum.photos/seed/1/400/300"),
			Status:      models.Submitted,
			Priority:    models.High,
			Reason:      "Safety hazard",
			CreatedAt:   now.Add(-2 * day),
		},
		{
			Category:    models.StreetlightOut,
			Description: "The streetlight at the corner of Elm and Oak has been out for a week.",
			Address:     "456 Elm St, Los Angeles, CA 90002",
			Location:    models.Location{Lat: 34.055, Lng: -118.245},
			PhotoURL:    photo("https://picsum.photos/seed/2/400/300"),
			Status:      models.Acknowledged,
			Priority:    models.Medium,
			Reason:      "Awaiting repair crew",
			CreatedAt:   now.Add(-5 * day),
		},
		{
			Category:    models.TrashOverflow,
			Description: "The public trash can is overflowing and attracting pests.",
			Address:     "789 Oak Ave, Los Angeles, CA 90003",
			Location:    models.Location{Lat: 34.05, Lng: -118.25},
			PhotoURL:    photo("https://picsum.photos/seed/3/400/300"),
			Status:      models.InProgress,
			Priority:    models.Medium,
			Reason:      "Sanitation crew dispatched",
			CreatedAt:   now.Add(-1 * day),
		},
		{
			Category:    models.Graffiti,
			Description: "Graffiti on the park bench.",
			Address:     "101 Park Rd, Los Angeles, CA 90004",
			Location:    models.Location{Lat: 34.06, Lng: -118.26},
			Status:      models.Resolved,
			Priority:    models.Low,
			Reason:      "Cleaned by city services",
			CreatedAt:   now.Add(-10 * day),
		},
	}
}

// Seed inserts the demo reports into repo.
func Seed(ctx context.Context, repo IssueRepository, now time.Time) error {
	for _, issue := range SeedIssues(now) {
		issue := issue
		if _, err := repo.Create(ctx, &issue); err != nil {
			return err
		}
	}
	return nil
}
