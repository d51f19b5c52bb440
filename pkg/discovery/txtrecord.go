package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeReflectorTXT creates TXT records for reflector discovery.
func EncodeReflectorTXT(info *ReflectorInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeySchemes] = encodeSchemes(info.Schemes)

	// Optional fields
	if info.MaxPayload > 0 {
		txt[TXTKeyMaxPayload] = strconv.Itoa(info.MaxPayload)
	}
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}

	return txt
}

// DecodeReflectorTXT parses TXT records from reflector discovery.
func DecodeReflectorTXT(txt TXTRecordMap) (*ReflectorInfo, error) {
	info := &ReflectorInfo{}

	// Parse schemes (required)
	scStr, ok := txt[TXTKeySchemes]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySchemes)
	}
	var err error
	info.Schemes, err = parseSchemes(scStr)
	if err != nil {
		return nil, err
	}
	if len(info.Schemes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySchemes)
	}

	// Optional fields
	if mpStr, ok := txt[TXTKeyMaxPayload]; ok {
		mp, err := strconv.Atoi(mpStr)
		if err != nil || mp < 0 {
			return nil, fmt.Errorf("%w: invalid max payload %q", ErrInvalidTXTRecord, mpStr)
		}
		info.MaxPayload = mp
	}
	info.Version = txt[TXTKeyVersion]

	return info, nil
}

// encodeSchemes converts schemes to a comma-separated string.
func encodeSchemes(schemes []string) string {
	return strings.Join(schemes, ",")
}

// parseSchemes parses a comma-separated scheme string.
func parseSchemes(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	schemes := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		schemes = append(schemes, p)
	}

	return schemes, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
