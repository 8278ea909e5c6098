package config

import (
	"fmt"
	"strings"

	"github.com/af-corp/media-delivery/internal/transform"
	"github.com/af-corp/media-delivery/internal/types"
	"github.com/caarlos0/env/v11"
)

// CloudinaryConfig is the provider account and delivery configuration. Every
// scalar can be overridden through its CLOUDINARY_* environment variable.
type CloudinaryConfig struct {
	CloudName         string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	UploadURL         string `yaml:"upload_url" env:"CLOUDINARY_UPLOAD_URL"`
	AutoMappingFolder string `yaml:"auto_mapping_folder" env:"CLOUDINARY_AUTO_MAPPING_FOLDER"`
	APIKey            string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret         string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
	UploadPreset      string `yaml:"upload_preset" env:"CLOUDINARY_UPLOAD_PRESET"`
	NotificationURL   string `yaml:"notification_url" env:"CLOUDINARY_NOTIFICATION_URL"`
	URL               string `yaml:"url" env:"CLOUDINARY_URL"`
	DeliveryType      string `yaml:"delivery_type" env:"CLOUDINARY_DELIVERY_TYPE"`
	EncodeSeparator   bool   `yaml:"encode_separator" env:"CLOUDINARY_ENCODE_SEPARATOR"`

	DefaultTransformations transform.Defaults `yaml:"default_transformations"`
}

// DefaultCloudinaryConfig mirrors the stock configuration: the public
// delivery host, "upload" delivery and automatic format/quality defaults.
func DefaultCloudinaryConfig() *CloudinaryConfig {
	return &CloudinaryConfig{
		UploadURL:    "https://res.cloudinary.com/",
		DeliveryType: "upload",
		DefaultTransformations: transform.Defaults{
			types.KindImage: transform.NewParams(
				"crop", "fill",
				"dpr", "auto",
				"fetch_format", "auto",
				"gravity", "auto",
				"quality", "auto",
			),
			types.KindVideo: transform.NewParams(
				"crop", "fill",
				"dpr", "auto",
				"fetch_format", "auto",
				"quality", "auto",
			),
		},
	}
}

// IsConfigured reports whether URLs can be built against Cloudinary: both the
// cloud name and the upload URL must be set.
func (c *CloudinaryConfig) IsConfigured() bool {
	return c != nil && strings.TrimSpace(c.CloudName) != "" && strings.TrimSpace(c.UploadURL) != ""
}

// ApplyEnv overrides fields from CLOUDINARY_* environment variables.
func (c *CloudinaryConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse cloudinary env: %w", err)
	}
	return nil
}

// Validate rejects default transformation sets for unknown asset kinds.
func (c *CloudinaryConfig) Validate() error {
	for kind := range c.DefaultTransformations {
		if _, ok := types.ParseKind(string(kind)); !ok {
			return fmt.Errorf("default_transformations: unknown asset kind %q", kind)
		}
	}
	return nil
}
