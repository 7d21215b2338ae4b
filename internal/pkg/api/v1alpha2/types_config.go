package v1alpha2

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	ImageSetConfigurationKind       = "ImageSetConfiguration"
	ImageSetConfigurationAPIVersion = "mirror.openshift.io/v1alpha2"
)

// ImageSetConfiguration object kind.
type ImageSetConfiguration struct {
	metav1.TypeMeta `json:",inline"`
	// ArchiveSize is the maximum size of the archive in Gigabytes.
	ArchiveSize int64 `json:"archiveSize,omitempty"`
	// Mirror defines the configuration for content types within the imageset.
	Mirror Mirror `json:"mirror"`
}

// Mirror defines the configuration for content types within the imageset.
type Mirror struct {
	// AdditionalImages defines the list of images
	// to be included in the imageset.
	AdditionalImages []Image `json:"additionalImages,omitempty"`
}

// Image contains a reference to a container image.
type Image struct {
	// Name of the image. Must be a fully qualified reference
	// including the registry, tag and digest.
	Name string `json:"name"`
}

// NewImageSetConfiguration returns a configuration with the kind,
// apiVersion and archive defaults filled in.
func NewImageSetConfiguration() ImageSetConfiguration {
	return ImageSetConfiguration{
		TypeMeta: metav1.TypeMeta{
			Kind:       ImageSetConfigurationKind,
			APIVersion: ImageSetConfigurationAPIVersion,
		},
		ArchiveSize: 2,
	}
}
