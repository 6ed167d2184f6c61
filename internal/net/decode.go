package net

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeLoose fills out from a loosely typed map, as sent by browsers and
// agents: numbers may arrive as JSON numbers or numeric strings, and index
// lists as "0 2 3" or "0,2,3". Fields are matched by their json tags.
func DecodeLoose(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToIntSliceHookFunc(),
			stringToIntHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("bad arguments: %w", err)
	}
	return nil
}

// DecodeClientMessage decodes one loosely typed client message.
func DecodeClientMessage(raw map[string]any) (ClientMessage, error) {
	var msg ClientMessage
	if err := DecodeLoose(raw, &msg); err != nil {
		return ClientMessage{}, err
	}
	if msg.Type == "" {
		return ClientMessage{}, fmt.Errorf("%w: missing type", ErrUnknownMessage)
	}
	return msg, nil
}

func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data any) (any, error) {
		if from != reflect.String {
			return data, nil
		}
		switch to {
		case reflect.Int:
			return strconv.Atoi(strings.TrimSpace(data.(string)))
		case reflect.Uint64:
			return strconv.ParseUint(strings.TrimSpace(data.(string)), 10, 64)
		}
		return data, nil
	}
}

func stringToIntSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]int(nil)) {
			return data, nil
		}
		fields := strings.FieldsFunc(data.(string), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		out := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("index %q: must be an integer", f)
			}
			out = append(out, n)
		}
		return out, nil
	}
}
