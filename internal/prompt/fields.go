package prompt

import (
	"context"
	"fmt"
)

// FillFields asks for every field that preset does not already answer and
// returns the merged values. Fields are asked in order.
func FillFields(ctx context.Context, driver Driver, fields []string, preset map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(fields)+len(preset))
	for key, value := range preset {
		values[key] = value
	}

	for _, field := range fields {
		if _, ok := values[field]; ok {
			continue
		}
		value, err := driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Value for '%s':", field),
			Help:    "Leave empty to render the field as blank text",
		})
		if err != nil {
			return nil, err
		}
		values[field] = value
	}

	return values, nil
}
