package referenceRepo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"facilities/models"

	"go.uber.org/zap"
)

const (
	AvailabilityFile = "availability.csv"
	TechniciansFile  = "technicians.csv"
	CustomersFile    = "customers.csv"
	FacilitiesFile   = "facilities.csv"
)

// LoadDir reads the reference sheets from dir. Missing sheets load as empty;
// malformed rows are logged and skipped.
func LoadDir(dir string, loc *time.Location, logger *zap.Logger) (*MemoryReferenceRepo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var data Dataset
	var err error

	if data.Slots, err = loadSheet(filepath.Join(dir, AvailabilityFile), logger, func(row map[string]string) (models.AvailabilitySlot, error) {
		return parseSlot(row, loc)
	}); err != nil {
		return nil, err
	}
	if data.Technicians, err = loadSheet(filepath.Join(dir, TechniciansFile), logger, parseTechnician); err != nil {
		return nil, err
	}
	if data.Customers, err = loadSheet(filepath.Join(dir, CustomersFile), logger, parseCustomer); err != nil {
		return nil, err
	}
	if data.Facilities, err = loadSheet(filepath.Join(dir, FacilitiesFile), logger, parseFacility); err != nil {
		return nil, err
	}

	logger.Info("Reference data loaded",
		zap.String("dir", dir),
		zap.Int("slots", len(data.Slots)),
		zap.Int("technicians", len(data.Technicians)),
		zap.Int("customers", len(data.Customers)),
		zap.Int("facilities", len(data.Facilities)))
	return NewMemoryReferenceRepo(data), nil
}

func loadSheet[T any](path string, logger *zap.Logger, parse func(map[string]string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Reference sheet missing, continuing without it", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSheet(f, path, logger, parse)
}

// ReadSheet decodes a header-led CSV into records, one parse call per row.
func ReadSheet[T any](r io.Reader, name string, logger *zap.Logger, parse func(map[string]string) (T, error)) ([]T, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []T
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("Skipping unreadable row", zap.String("sheet", name), zap.Int("line", line), zap.Error(err))
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		item, err := parse(row)
		if err != nil {
			logger.Warn("Skipping invalid row", zap.String("sheet", name), zap.Int("line", line), zap.Error(err))
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sheetNumber undoes spreadsheet float export ("501234567.0").
func sheetNumber(s string) string {
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "0") {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func uaePhone(s string) string {
	s = sheetNumber(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return s
	}
	return "+971" + strings.TrimPrefix(s, "0")
}

func parseSlotTime(value, date string, loc *time.Location) (time.Time, error) {
	if in, err := models.ParseInstant(value, loc); err == nil && !in.DateOnly {
		return in.At, nil
	}
	// Bare clock times take the row's date.
	if clock, err := time.ParseInLocation(models.TimeLayout, value, loc); err == nil && date != "" {
		day, err := models.ParseInstant(date, loc)
		if err != nil {
			return time.Time{}, err
		}
		return models.CombineDateTime(day.At, clock), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}

func parseSlot(row map[string]string, loc *time.Location) (models.AvailabilitySlot, error) {
	if row["technician_id"] == "" {
		return models.AvailabilitySlot{}, fmt.Errorf("missing technician_id")
	}
	start, err := parseSlotTime(row["available_start_time"], row["available_date"], loc)
	if err != nil {
		return models.AvailabilitySlot{}, fmt.Errorf("available_start_time: %w", err)
	}
	end, err := parseSlotTime(row["available_end_time"], row["available_date"], loc)
	if err != nil {
		return models.AvailabilitySlot{}, fmt.Errorf("available_end_time: %w", err)
	}
	if !end.After(start) {
		return models.AvailabilitySlot{}, fmt.Errorf("window ends before it starts")
	}
	return models.AvailabilitySlot{
		TechnicianID:   row["technician_id"],
		TechnicianName: row["technician_name"],
		Skillset:       splitList(row["skillset"]),
		Zone:           row["zone"],
		WindowStart:    start,
		WindowEnd:      end,
	}, nil
}

func parseTechnician(row map[string]string) (models.Technician, error) {
	if row["technician_id"] == "" {
		return models.Technician{}, fmt.Errorf("missing technician_id")
	}
	status := models.TechnicianStatus(row["current_status"])
	if status == "" {
		status = models.TechnicianAvailable
	}
	return models.Technician{
		TechnicianID:   row["technician_id"],
		TechnicianName: row["technician_name"],
		ContactNumber:  uaePhone(row["contact_number"]),
		Skillset:       splitList(row["skillset"]),
		OperatingZones: splitList(row["operating_zones"]),
		Status:         status,
	}, nil
}

func parseCustomer(row map[string]string) (models.Customer, error) {
	if row["customer_id"] == "" {
		return models.Customer{}, fmt.Errorf("missing customer_id")
	}
	lang := row["preferred_language"]
	if lang == "" {
		lang = "English"
	}
	status := row["account_status"]
	if status == "" {
		status = "Active"
	}
	return models.Customer{
		CustomerID:        row["customer_id"],
		FullName:          row["full_name"],
		PhoneNumber:       uaePhone(row["phone_number"]),
		EmailAddress:      row["email_address"],
		PreferredLanguage: lang,
		AccountStatus:     status,
	}, nil
}

func parseFacility(row map[string]string) (models.Facility, error) {
	if row["property_id"] == "" {
		return models.Facility{}, fmt.Errorf("missing property_id")
	}
	return models.Facility{
		PropertyID:   row["property_id"],
		CustomerID:   row["customer_id"],
		BuildingName: row["building_name"],
		UnitNumber:   sheetNumber(row["unit_number"]),
		Floor:        sheetNumber(row["floor"]),
		FullAddress:  row["full_address"],
		City:         row["city"],
		Emirate:      row["emirate"],
		AreaZone:     row["area_zone"],
		PropertyType: row["property_type"],
	}, nil
}
