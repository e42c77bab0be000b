package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type FetchSpec struct {
	// Repository is the base URL of the lime-compiler repository.
	// Environment references are expanded before use.
	Repository string `json:"repository"`
	// KernelVersion selects the module to download.
	KernelVersion string `json:"kernelVersion,omitempty"`
	// ManifestType selects the manifest listed in the repository
	// index. Defaults to "primary".
	ManifestType string `json:"manifestType,omitempty"`
	// GPGVerify enables fetching of detached signatures.
	GPGVerify bool `json:"gpgVerify,omitempty"`
	// GPGKeyring is a path to a keyring of trusted public keys.
	// When set, fetched signatures are enforced rather than advisory.
	GPGKeyring string `json:"gpgKeyring,omitempty"`
	// OutputDir is where the module is written.
	OutputDir string `json:"outputDir,omitempty"`
}

type Fetch struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec FetchSpec `json:"spec"`
}
