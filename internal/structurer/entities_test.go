package structurer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractEntities(t *testing.T) {
	text := "In March 2024, Acme Corp and the FDA reported that 25% of patients using AI diagnostics improved, while ai adoption doubled."

	entities := ExtractEntities(text)

	if got := entities[CategoryPercentages]; len(got) != 1 || got[0] != "25%" {
		t.Errorf("percentages = %v, want [25%%]", got)
	}
	if diff := cmp.Diff([]string{"AI"}, entities[CategoryTechnology]); diff != "" {
		t.Errorf("technology mismatch (-want +got):\n%s", diff)
	}

	wantContains := map[string]string{
		CategoryOrganizations: "Acme Corp",
		CategoryMedical:       "patients",
		CategoryDates:         "2024",
	}
	for category, want := range wantContains {
		if !containsEntity(entities[category], want) {
			t.Errorf("%s = %v, want to contain %q", category, entities[category], want)
		}
	}
	if !containsEntity(entities[CategoryOrganizations], "FDA") {
		t.Errorf("organizations = %v, want to contain FDA", entities[CategoryOrganizations])
	}
}

func TestExtractEntities_DedupPreservesFirstOccurrence(t *testing.T) {
	entities := ExtractEntities("Blockchain beats blockchain: BLOCKCHAIN everywhere.")

	got := entities[CategoryTechnology]
	if len(got) != 1 {
		t.Fatalf("Expected one deduped entry, got %v", got)
	}
	if got[0] != "Blockchain" {
		t.Errorf("First occurrence should win, got %q", got[0])
	}
}

func TestExtractEntities_EmptyCategoriesOmitted(t *testing.T) {
	entities := ExtractEntities("nothing notable here")
	if len(entities) != 0 {
		t.Errorf("Expected empty map, got %v", entities)
	}
}

func TestExtractEntities_People(t *testing.T) {
	entities := ExtractEntities("Dr. Jane Smith and Prof. Lee disagreed about the dosage.")

	people := entities[CategoryPeople]
	if !containsEntity(people, "Dr. Jane Smith") {
		t.Errorf("people = %v, want to contain Dr. Jane Smith", people)
	}
	if !containsEntity(people, "Prof. Lee") {
		t.Errorf("people = %v, want to contain Prof. Lee", people)
	}
}

func TestExtractEntities_Measurements(t *testing.T) {
	entities := ExtractEntities("The probe traveled 450 km carrying 12.5 kg of instruments.")

	measurements := entities[CategoryMeasurements]
	if len(measurements) != 2 {
		t.Fatalf("measurements = %v, want two entries", measurements)
	}
}

func containsEntity(entities []string, want string) bool {
	for _, e := range entities {
		if e == want {
			return true
		}
	}
	return false
}
