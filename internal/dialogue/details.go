package dialogue

import (
	"strings"

	"roofbot/internal/models"
	"roofbot/internal/utils"
)

// Detail keywords as users type them (already normalized).
const (
	keyFloor       = "طبقه"
	keyTotalFloors = "کل طبقات"
	keyBuilt       = "ساخت"
	keyRooms       = "اتاق"
	keyElevator    = "آسانسور"
	keyParking     = "پارکینگ"
	keyStoreroom   = "انباری"
	keyBalcony     = "بالکن"
)

type detailEntry struct {
	raw   string
	key   string
	value string
}

func splitDetails(text string) []detailEntry {
	var entries []detailEntry
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '،' || r == ','
	}) {
		line = utils.NormalizeText(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		entries = append(entries, detailEntry{
			raw:   line,
			key:   strings.TrimSpace(key),
			value: strings.TrimSpace(value),
		})
	}
	return entries
}

// ParseDetails reads one attribute per line, "key:value" or a bare flag
// keyword, using the vocabulary of cat. Lines outside that vocabulary are
// returned as ignored. Categories without details yield nil.
func ParseDetails(cat models.CategoryID, text string) (models.Details, []string) {
	entries := splitDetails(text)
	switch cat {
	case models.CategoryApartment:
		return parseApartment(entries)
	case models.CategoryVilla:
		return parseVilla(entries)
	}
	return nil, nil
}

func parseApartment(entries []detailEntry) (models.Details, []string) {
	var d models.ApartmentDetails
	var ignored []string
	for _, e := range entries {
		switch {
		case e.key == keyFloor && e.value != "":
			d.Floor = e.value
		case e.key == keyTotalFloors && e.value != "":
			d.TotalFloors = e.value
		case e.key == keyBuilt && e.value != "":
			d.ProductionYear = e.value
		case e.key == keyRooms && e.value != "":
			d.Rooms = e.value
		case e.key == keyElevator:
			d.Elevator = true
		case e.key == keyParking:
			d.Parking = true
		case e.key == keyStoreroom:
			d.Storeroom = true
		default:
			ignored = append(ignored, e.raw)
		}
	}
	return d, ignored
}

func parseVilla(entries []detailEntry) (models.Details, []string) {
	var d models.VillaDetails
	var ignored []string
	for _, e := range entries {
		switch {
		case e.key == keyBuilt && e.value != "":
			d.ProductionYear = e.value
		case e.key == keyRooms && e.value != "":
			d.Rooms = e.value
		case e.key == keyBalcony:
			d.Balcony = true
		case e.key == keyParking:
			d.Parking = true
		case e.key == keyStoreroom:
			d.Storeroom = true
		default:
			ignored = append(ignored, e.raw)
		}
	}
	return d, ignored
}

// describeDetails renders recognized details for the confirmation summary.
func describeDetails(d models.Details) []string {
	var out []string
	add := func(key, value string) {
		if value != "" {
			out = append(out, key+": "+value)
		}
	}
	flag := func(key string, on bool) {
		if on {
			out = append(out, key)
		}
	}
	switch d := d.(type) {
	case models.ApartmentDetails:
		add(keyFloor, d.Floor)
		add(keyTotalFloors, d.TotalFloors)
		add(keyBuilt, d.ProductionYear)
		add(keyRooms, d.Rooms)
		flag(keyElevator, d.Elevator)
		flag(keyParking, d.Parking)
		flag(keyStoreroom, d.Storeroom)
	case models.VillaDetails:
		add(keyBuilt, d.ProductionYear)
		add(keyRooms, d.Rooms)
		flag(keyBalcony, d.Balcony)
		flag(keyParking, d.Parking)
		flag(keyStoreroom, d.Storeroom)
	}
	return out
}
