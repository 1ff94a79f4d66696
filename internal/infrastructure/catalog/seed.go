// Package catalog loads medicine catalog snapshots used to seed development
// and demo databases.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"pharmadesk/internal/domain/registers/stock"
)

type seedFile struct {
	Medicines []stock.Medicine `mapstructure:"medicines"`
}

// LoadMedicines reads a YAML or JSON file with a top-level "medicines" list.
//
//	medicines:
//	  - id: napa
//	    name: Napa 500
//	    stock: 120
//	    units_per_box: 10
func LoadMedicines(path string) ([]stock.Medicine, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f seedFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(f.Medicines))
	var errs []error
	for i := range f.Medicines {
		med := &f.Medicines[i]
		med.ID = strings.TrimSpace(med.ID)
		med.Name = strings.TrimSpace(med.Name)

		switch {
		case med.ID == "":
			errs = append(errs, fmt.Errorf("medicines[%d]: id is required", i))
		case med.Name == "":
			errs = append(errs, fmt.Errorf("medicines[%d] %s: name is required", i, med.ID))
		case med.Stock < 0:
			errs = append(errs, fmt.Errorf("medicines[%d] %s: stock must not be negative", i, med.ID))
		case med.UnitsPerBox < 0:
			errs = append(errs, fmt.Errorf("medicines[%d] %s: units_per_box must not be negative", i, med.ID))
		}
		if _, dup := seen[med.ID]; dup && med.ID != "" {
			errs = append(errs, fmt.Errorf("medicines[%d]: duplicate id %s", i, med.ID))
		}
		seen[med.ID] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Medicines, nil
}
