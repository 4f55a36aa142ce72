package loadcheck

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/mergington/pkg/logger"
)

// generateStudents returns one unique email per student followed by
// duplicates that repeat earlier students in upper case.
func generateStudents(ctx context.Context, students, duplicates int) []string {
	emails := make([]string, 0, students+duplicates)
	for i := 0; i < students; i++ {
		emails = append(emails, "student-"+uuid.NewString()[:13]+"@"+emailDomain)
	}
	for i := 0; i < duplicates && students > 0; i++ {
		emails = append(emails, strings.ToUpper(emails[i%students]))
	}

	logger.Get().Info(ctx, "generated students",
		logger.Int("students", students),
		logger.Int("duplicates", duplicates),
	)
	return emails
}
