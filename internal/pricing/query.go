package pricing

import (
	"net/url"
	"strconv"

	"roofbot/internal/models"
)

const flagOn = "on"

// BuildQuery encodes a filter as the price service's query parameters.
// Details that do not belong to the filter's category are left out.
func BuildQuery(f models.Filter) url.Values {
	q := url.Values{}
	q.Set("days", strconv.Itoa(f.Days))
	q.Set("category", string(f.Category.ID))
	q.Set("city", f.City.ID)
	q.Set("district", f.District.ID)

	switch d := f.Details.(type) {
	case models.ApartmentDetails:
		if f.Category.ID != models.CategoryApartment {
			break
		}
		setIf(q, "apr_floor_number", d.Floor)
		setIf(q, "apr_total_floors", d.TotalFloors)
		setIf(q, "apr_production_year", d.ProductionYear)
		setIf(q, "apr_rooms", d.Rooms)
		flag(q, "elevator", d.Elevator)
		flag(q, "parking", d.Parking)
		flag(q, "storeroom", d.Storeroom)
	case models.VillaDetails:
		if f.Category.ID != models.CategoryVilla {
			break
		}
		setIf(q, "villa_production_year", d.ProductionYear)
		setIf(q, "villa_rooms", d.Rooms)
		flag(q, "balcony", d.Balcony)
		flag(q, "parking", d.Parking)
		flag(q, "storeroom", d.Storeroom)
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func flag(q url.Values, key string, on bool) {
	if on {
		q.Set(key, flagOn)
	}
}
