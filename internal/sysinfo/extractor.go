// Package sysinfo scrapes host attributes from an lscpu-style dump.
package sysinfo

import (
	"regexp"
	"strconv"
	"strings"
)

// SystemInfo holds the host attributes recorded alongside a snapshot.
// Every field is independently optional.
type SystemInfo struct {
	CPUModel     string `json:"cpu_model,omitempty"`
	CPUCount     int    `json:"cpu_count,omitempty"`
	Architecture string `json:"architecture,omitempty"`
	L1DCache     string `json:"l1d_cache,omitempty"`
	L1ICache     string `json:"l1i_cache,omitempty"`
	L2Cache      string `json:"l2_cache,omitempty"`
	L3Cache      string `json:"l3_cache,omitempty"`
}

// fieldRule pairs a line pattern with the coercion that stores its value.
type fieldRule struct {
	pattern *regexp.Regexp
	assign  func(*SystemInfo, string)
}

var fieldRules = []fieldRule{
	{regexp.MustCompile(`Model name:\s+(.+)`), func(info *SystemInfo, v string) {
		info.CPUModel = v
	}},
	{regexp.MustCompile(`CPU\(s\):\s+(\d+)`), func(info *SystemInfo, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			info.CPUCount = n
		}
	}},
	{regexp.MustCompile(`Architecture:\s+(.+)`), func(info *SystemInfo, v string) {
		info.Architecture = v
	}},
	{regexp.MustCompile(`L1d cache:\s+(.+)`), func(info *SystemInfo, v string) {
		info.L1DCache = v
	}},
	{regexp.MustCompile(`L1i cache:\s+(.+)`), func(info *SystemInfo, v string) {
		info.L1ICache = v
	}},
	{regexp.MustCompile(`L2 cache:\s+(.+)`), func(info *SystemInfo, v string) {
		info.L2Cache = v
	}},
	{regexp.MustCompile(`L3 cache:\s+(.+)`), func(info *SystemInfo, v string) {
		info.L3Cache = v
	}},
}

// Extract scrapes the recognized fields from free-form system description
// text. Fields whose pattern never matches stay at their zero value.
func Extract(text string) SystemInfo {
	var info SystemInfo
	for _, rule := range fieldRules {
		if match := rule.pattern.FindStringSubmatch(text); match != nil {
			rule.assign(&info, strings.TrimSpace(match[1]))
		}
	}
	return info
}
