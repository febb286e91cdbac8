// internal/workers/fulfillment/dining-suggestions/compose.go
package suggestions

import (
	"fmt"
	"strconv"
	"strings"

	"dining-concierge/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// compose renders the suggestion email for req.
func compose(req models.CanonicalRequest, restaurants []*models.Restaurant) (subject, body string) {
	title := cases.Title(language.English)
	cuisine := title.String(req.Cuisine)
	location := title.String(req.Location)

	subject = fmt.Sprintf("Your %s Restaurant Suggestions", cuisine)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello! Here are my %s restaurant suggestions in %s for %d people on %s at %s:\n\n",
		cuisine, location, req.NumberOfPeople, req.DiningDate, req.DiningTime)
	for i, r := range restaurants {
		fmt.Fprintf(&b, "%d. %s - %s - Rating: %s/5 - Reviews: %d\n",
			i+1, r.Name, r.Address, strconv.FormatFloat(r.Rating, 'f', -1, 64), r.ReviewCount)
	}
	b.WriteString("\nEnjoy your meal!")
	return subject, b.String()
}
