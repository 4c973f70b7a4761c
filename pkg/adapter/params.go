package adapter

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeParams decodes adapter-specific params from the target config into out,
// which must be a pointer to a struct with mapstructure tags.
// String durations such as "5s" are accepted for time.Duration fields.
func DecodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("failed to decode adapter params: %w", err)
	}
	return nil
}
