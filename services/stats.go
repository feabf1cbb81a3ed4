package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// ServiceCategories are the supported detailing categories.
var ServiceCategories = []string{"Voiture", "Canapé", "Textile"}

// ClientRevenue sums price + surcharge over a client's non-cancelled
// engagements, recomputed from the catalog on every call.
func ClientRevenue(app *pocketbase.PocketBase, clientID string) (float64, error) {
	records, err := app.FindRecordsByFilter(
		"engagements",
		"client = {:clientId} && status != {:cancelled}",
		"",
		0,
		0,
		map[string]any{"clientId": clientID, "cancelled": string(StatusAnnule)},
	)
	if err != nil {
		return 0, fmt.Errorf("list engagements for client %s: %w", clientID, err)
	}

	var revenue float64
	for _, record := range records {
		totals := EngagementTotals(app, EngagementFromRecord(record))
		revenue += totals.Price + totals.Surcharge
	}
	return revenue, nil
}

// CategorySummary aggregates catalog and revenue figures for one service
// category.
type CategorySummary struct {
	Category        string  `json:"category"`
	Total           int     `json:"total"`
	Active          int     `json:"active"`
	AveragePrice    float64 `json:"averagePrice"`
	AverageDuration float64 `json:"averageDuration"`
	Revenue         float64 `json:"revenue"`
}

// ServiceCategorySummaries computes per-category catalog statistics and the
// revenue of engagements referencing each category's services.
func ServiceCategorySummaries(app *pocketbase.PocketBase) ([]CategorySummary, error) {
	serviceRecords, err := app.FindAllRecords("services")
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	engagementRecords, err := app.FindAllRecords("engagements")
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}

	engagementsByService := map[string][]*Engagement{}
	for _, record := range engagementRecords {
		e := EngagementFromRecord(record)
		engagementsByService[e.ServiceID] = append(engagementsByService[e.ServiceID], e)
	}

	summaries := make([]CategorySummary, 0, len(ServiceCategories))
	for _, category := range ServiceCategories {
		summary := CategorySummary{Category: category}
		var optionPriceSum, optionDurationSum float64

		for _, record := range serviceRecords {
			if record.GetString("category") != category {
				continue
			}
			summary.Total++
			if record.GetBool("active") {
				summary.Active++
			}

			service := LoadService(app, record.Id)
			if service != nil && len(service.Options) > 0 {
				var price, duration float64
				for _, option := range service.Options {
					price += option.UnitPriceHT
					duration += float64(option.DefaultDurationMin)
				}
				optionPriceSum += price / float64(len(service.Options))
				optionDurationSum += duration / float64(len(service.Options))
			}

			for _, e := range engagementsByService[record.Id] {
				totals := EngagementTotals(app, e)
				summary.Revenue += totals.Price + totals.Surcharge
			}
		}

		if summary.Total > 0 {
			summary.AveragePrice = optionPriceSum / float64(summary.Total)
			summary.AverageDuration = optionDurationSum / float64(summary.Total)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
