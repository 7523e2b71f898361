// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site is the public profile of the city: the values feeds, the assistant
// and error fallbacks interpolate.
type Site struct {
	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	FeedDescription string `yaml:"feed_description"`
	Language        string `yaml:"language"`
	Phone           string `yaml:"phone"`
	Address         string `yaml:"address"`
	AssistantPrompt string `yaml:"assistant_prompt"`
}

// DefaultSite is used for every field the profile file leaves empty.
var DefaultSite = Site{
	Name:            "City Hall",
	URL:             "http://localhost:8080",
	FeedDescription: "News, events and department updates from City Hall.",
	Language:        "en-US",
	Phone:           "(555) 555-0100",
	Address:         "1 Main Street",
	AssistantPrompt: "You are the virtual assistant of the city's official website. " +
		"Answer residents' questions using only the city information below. " +
		"If the answer is not in it, say so and suggest contacting City Hall.",
}

// LoadSite reads a YAML site profile. An empty path returns DefaultSite.
func LoadSite(path string) (Site, error) {
	site := DefaultSite
	if path == "" {
		return site, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Site{}, fmt.Errorf("read site profile: %w", err)
	}
	var file Site
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Site{}, fmt.Errorf("parse site profile: %w", err)
	}

	merge(&site.Name, file.Name)
	merge(&site.URL, file.URL)
	merge(&site.FeedDescription, file.FeedDescription)
	merge(&site.Language, file.Language)
	merge(&site.Phone, file.Phone)
	merge(&site.Address, file.Address)
	merge(&site.AssistantPrompt, file.AssistantPrompt)
	site.URL = strings.TrimRight(site.URL, "/")
	return site, nil
}

func merge(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// URLFor returns the absolute URL of a site-relative path.
func (s Site) URLFor(path string) string {
	base := strings.TrimRight(s.URL, "/")
	if path == "" || path == "/" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
