// Copyright 2026 The Viaduct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package viaduct

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrParamMissing is returned when a required parameter is not found.
	ErrParamMissing = errors.New("parameter not found")

	// ErrParamInvalid is returned when a parameter cannot be parsed.
	ErrParamInvalid = errors.New("invalid parameter value")
)

// ParamInt parses a path parameter as an int.
// Returns an error if the parameter is missing or cannot be parsed.
//
// Example:
//
//	r.GET("/users/:id", func(c *viaduct.Context) {
//	    id, err := c.ParamInt("id")
//	    if err != nil {
//	        c.WriteErrorResponse(http.StatusBadRequest, "id must be an integer")
//	        return
//	    }
//	    // Use id...
//	})
func (c *Context) ParamInt(name string) (int, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamInt64 parses a path parameter as an int64.
// Returns an error if the parameter is missing or cannot be parsed.
func (c *Context) ParamInt64(name string) (int64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamUint64 parses a path parameter as a uint64.
// Returns an error if the parameter is missing or cannot be parsed.
func (c *Context) ParamUint64(name string) (uint64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamFloat64 parses a path parameter as a float64.
// Returns an error if the parameter is missing or cannot be parsed.
func (c *Context) ParamFloat64(name string) (float64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamBool parses a path parameter as a bool, accepting the forms
// strconv.ParseBool accepts.
func (c *Context) ParamBool(name string) (bool, error) {
	s := c.Param(name)
	if s == "" {
		return false, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamUUID parses a path parameter as an RFC 4122 UUID.
// Returns an error if the parameter is missing or is not a valid UUID.
func (c *Context) ParamUUID(name string) (uuid.UUID, error) {
	s := c.Param(name)
	if s == "" {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamTime parses a path parameter as a time.Time using the given layout.
func (c *Context) ParamTime(name, layout string) (time.Time, error) {
	s := c.Param(name)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	val, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}

	return val, nil
}

// ParamEnum validates a path parameter against an allowed set.
// Returns the value when it is one of the allowed strings.
func (c *Context) ParamEnum(name string, allowed ...string) (string, error) {
	s := c.Param(name)
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrParamMissing, name)
	}

	if !slices.Contains(allowed, s) {
		return "", fmt.Errorf("%w: %s must be one of [%s]", ErrParamInvalid, name, strings.Join(allowed, ", "))
	}

	return s, nil
}

// QueryInt parses a query parameter as an int, returning def when the
// parameter is absent or malformed.
func (c *Context) QueryInt(name string, def int) int {
	s := c.Query(name)
	if s == "" {
		return def
	}
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return def
}

// QueryInt64 parses a query parameter as an int64, returning def when the
// parameter is absent or malformed.
func (c *Context) QueryInt64(name string, def int64) int64 {
	s := c.Query(name)
	if s == "" {
		return def
	}
	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		return val
	}
	return def
}

// QueryBool parses a query parameter as a bool, returning def when the
// parameter is absent or malformed.
func (c *Context) QueryBool(name string, def bool) bool {
	s := c.Query(name)
	if s == "" {
		return def
	}
	if val, err := strconv.ParseBool(s); err == nil {
		return val
	}
	return def
}

// QueryFloat64 parses a query parameter as a float64, returning def when
// the parameter is absent or malformed.
func (c *Context) QueryFloat64(name string, def float64) float64 {
	s := c.Query(name)
	if s == "" {
		return def
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val
	}
	return def
}

// QueryDuration parses a query parameter as a time.Duration ("30s", "5m"),
// returning def when the parameter is absent or malformed.
func (c *Context) QueryDuration(name string, def time.Duration) time.Duration {
	s := c.Query(name)
	if s == "" {
		return def
	}
	if val, err := time.ParseDuration(s); err == nil {
		return val
	}
	return def
}

// QueryStrings returns all values for a repeated query parameter, honoring
// both ?tag=a&tag=b and comma separated ?tag=a,b forms.
func (c *Context) QueryStrings(name string) []string {
	if c.Request == nil {
		return nil
	}

	values := c.Request.URL.Query()[name]
	if len(values) == 0 {
		return nil
	}

	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
