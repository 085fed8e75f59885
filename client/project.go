package client

import (
	"errors"
	"fmt"
	"strings"
)

// ProjectEnvVars are consulted in order when resolving the project id.
var ProjectEnvVars = []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"}

// ErrMissingProjectID matches any MissingProjectIDError.
var ErrMissingProjectID = errors.New("missing project id")

// MissingProjectIDError is returned when none of the project variables hold a value.
type MissingProjectIDError struct {
	Variables []string
}

func (e *MissingProjectIDError) Error() string {
	return fmt.Sprintf("%v: set the environment variable %v to your Google Cloud project id",
		ErrMissingProjectID, strings.Join(e.Variables, " or "))
}

func (e *MissingProjectIDError) Is(target error) bool {
	return target == ErrMissingProjectID
}

// LookupEnv has the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// ProjectID returns the first non-empty value of ProjectEnvVars.
func ProjectID(lookup LookupEnv) (string, error) {
	for _, name := range ProjectEnvVars {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			return value, nil
		}
	}

	return "", &MissingProjectIDError{Variables: ProjectEnvVars}
}
