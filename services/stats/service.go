package stats

import (
	"context"
	"sort"

	"github.com/jinzhu/now"

	appservice "passport-apply/services/application"
)

// Totals summarizes the application collection.
type Totals struct {
	Total           int64 `json:"total"`
	WithAppointment int64 `json:"with_appointment"`
	Renewals        int64 `json:"renewals"`
}

// DailyCount is the number of applications created on one calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// CategoryCount is the number of applications in one report category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Service computes read-only statistics over the full aggregate collection.
// Nothing is cached; every call reads current state.
type Service struct {
	store appservice.Store
}

// NewService creates a stats service over the given application store.
func NewService(store appservice.Store) *Service {
	return &Service{store: store}
}

// Totals returns the overall count plus counts of applications carrying a
// biometric appointment date and of renewals (a present travel document set).
func (s *Service) Totals(ctx context.Context) (*Totals, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	totals := &Totals{Total: int64(len(apps))}
	for _, app := range apps {
		if app.BiometricAppointmentDate != "" {
			totals.WithAppointment++
		}
		if app.PresentTravelDocument != "" {
			totals.Renewals++
		}
	}
	return totals, nil
}

// Daily groups applications by creation day, ascending. Days without
// applications are omitted; there is no zero-fill.
func (s *Service) Daily(ctx context.Context) ([]DailyCount, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64)
	for _, app := range apps {
		day := now.With(app.CreatedAt).BeginningOfDay().Format("2006-01-02")
		byDay[day]++
	}

	out := make([]DailyCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, DailyCount{Date: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}

// ByTravelDocument groups applications by travel-document type, descending by
// count, with known codes remapped to report labels.
func (s *Service) ByTravelDocument(ctx context.Context) ([]CategoryCount, error) {
	return s.byCategory(ctx, func(code string) string {
		return travelDocumentLabel(code)
	}, func(app appField) string {
		return app.travelDocument
	})
}

// ByDistrict groups applications by permanent-address district, descending by
// count, with known codes remapped to district names.
func (s *Service) ByDistrict(ctx context.Context) ([]CategoryCount, error) {
	return s.byCategory(ctx, func(code string) string {
		return districtLabel(code)
	}, func(app appField) string {
		return app.district
	})
}

type appField struct {
	travelDocument string
	district       string
}

func (s *Service) byCategory(ctx context.Context, label func(string) string, pick func(appField) string) ([]CategoryCount, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, app := range apps {
		code := pick(appField{
			travelDocument: app.TypeOfTravelDocument,
			district:       app.PermanentAddressDistrict,
		})
		counts[label(code)]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
