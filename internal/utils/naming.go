package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

const bucketPrefix = "deployhub"

// roleArnRegex is the strict shape a role identifier must match before any
// exchange with the identity provider is attempted.
var roleArnRegex = regexp.MustCompile(`^arn:aws:iam::\d{12}:role/[\w+=,.@/-]+$`)

// BucketName builds a globally unique bucket name from a fixed prefix, a slug
// of the project name and a random suffix. No coordination step: the 8 hex
// chars of entropy make collisions negligible.
func BucketName(projectName string) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%s-%s", bucketPrefix, slug.Make(projectName), hex.EncodeToString(suffix))
}

// IsValidRoleArn reports whether the identifier is ARN-shaped.
func IsValidRoleArn(arn string) bool {
	return roleArnRegex.MatchString(arn)
}

// AccountIDFromRoleArn pulls the 12-digit account id out of a role ARN.
// Callers must validate the ARN first.
func AccountIDFromRoleArn(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}
