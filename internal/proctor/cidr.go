package proctor

import (
    "fmt"
    "strconv"
    "strings"
)

// MatchEntry checks a caller address against one allow-list entry. Entries
// containing a slash are CIDR ranges; anything else must match exactly.
func MatchEntry(addr, entry string) bool {
    if strings.Contains(entry, "/") {
        ok, err := MatchCIDR(addr, entry)
        return err == nil && ok
    }
    return addr == entry
}

// ValidateEntry checks that an allow-list entry is a well-formed IPv4
// address or CIDR range before it is stored.
func ValidateEntry(entry string) error {
    if strings.Contains(entry, "/") {
        _, err := MatchCIDR("0.0.0.0", entry)
        return err
    }
    _, err := parseIPv4(entry)
    return err
}

// MatchCIDR reports whether an IPv4 address falls inside a network/prefix
// range. The top prefixLength bits of both addresses must agree.
func MatchCIDR(addr, cidr string) (bool, error) {
    netPart, lenPart, found := strings.Cut(cidr, "/")
    if !found {
        return false, fmt.Errorf("invalid cidr %q", cidr)
    }
    prefixLen, err := strconv.Atoi(lenPart)
    if err != nil || prefixLen < 0 || prefixLen > 32 {
        return false, fmt.Errorf("invalid prefix length %q", lenPart)
    }
    candidate, err := parseIPv4(addr)
    if err != nil {
        return false, err
    }
    network, err := parseIPv4(netPart)
    if err != nil {
        return false, err
    }
    var mask uint32
    if prefixLen > 0 {
        mask = ^uint32(0) << (32 - prefixLen)
    }
    return candidate&mask == network&mask, nil
}

// parseIPv4 packs a dot-decimal address into a uint32, most significant
// octet first.
func parseIPv4(s string) (uint32, error) {
    parts := strings.Split(s, ".")
    if len(parts) != 4 {
        return 0, fmt.Errorf("invalid ipv4 address %q", s)
    }
    var packed uint32
    for _, part := range parts {
        octet, err := strconv.Atoi(part)
        if err != nil || octet < 0 || octet > 255 {
            return 0, fmt.Errorf("invalid ipv4 address %q", s)
        }
        packed = packed<<8 | uint32(octet)
    }
    return packed, nil
}
