package airutil

import "github.com/drone/envsubst"

// ExpandEnv substitutes ${VAR} references in s from the environment.
// Malformed references are passed through untouched.
func ExpandEnv(s string) string {
	val, _ := envsubst.EvalEnv(s)
	return val
}
