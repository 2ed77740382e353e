package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scis/scis/internal/domain/consent"
	"github.com/scis/scis/internal/domain/endpoint"
	"github.com/scis/scis/internal/domain/feedback"
	"github.com/scis/scis/internal/domain/hospital"
	"github.com/scis/scis/internal/domain/identity"
	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/internal/platform/fhir"
)

var seedDataTypes = []struct {
	dataType     string
	fhirResource string
}{
	{auth.DataTypeMedicalHistory, "Condition"},
	{auth.DataTypeLabResults, "Observation"},
	{auth.DataTypeMedications, "MedicationRequest"},
	{auth.DataTypeAllergies, "AllergyIntolerance"},
	{auth.DataTypeImmunizations, "Immunization"},
	{auth.DataTypeVitalSigns, "Observation"},
	{auth.DataTypeDemographics, "Patient"},
	{auth.DataTypeAppointments, "Appointment"},
}

// Comment pools keep seeded feedback meaningful to the sentiment analyzer
// instead of random lorem text.
var positiveComments = []string{
	"Excellent care, the doctor was helpful and kind",
	"Great experience, clean facility and friendly staff",
	"Very professional and caring, highly recommend",
	"Quick recovery thanks to an attentive doctor",
}

var negativeComments = []string{
	"Terrible wait times and rude staff",
	"The treatment was disappointing and the ward was dirty",
	"Poor communication, I felt ignored the whole visit",
}

var neutralComments = []string{
	"The visit went as scheduled",
	"Standard checkup, nothing to report",
}

// runSeed drives the regular service layer rather than raw SQL, so seeded
// data passes the same validation as API traffic.
func runSeed(ctx context.Context, pool *pgxpool.Pool, hospitalCount, patientsPerHospital int) error {
	faker := gofakeit.New(0)

	hospitalSvc := hospital.NewService(hospital.NewRepoPG(pool))
	identitySvc := identity.NewService(identity.NewPatientRepoPG(pool), identity.NewUserRepoPG(pool))
	consentSvc := consent.NewService(consent.NewRepoPG(pool))
	endpointSvc := endpoint.NewService(endpoint.NewRepoPG(pool), fhir.NewClient(15*time.Second))
	feedbackSvc := feedback.NewService(feedback.NewRepoPG(pool), feedback.NewLexiconAnalyzer())

	admin := &identity.User{
		Email:    "admin@scis.health",
		FullName: "System Administrator",
		Role:     auth.RoleSystemManager,
	}
	if err := identitySvc.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create system manager: %w", err)
	}

	var (
		hospitals []*hospital.Hospital
		doctors   = map[string][]*identity.User{} // hospital code -> doctors
		patients  = map[string][]*identity.Patient{}
	)

	for i := 0; i < hospitalCount; i++ {
		code := fmt.Sprintf("HOSP-%03d", i+1)
		city := faker.City()
		country := faker.Country()
		phone := faker.Phone()
		address := faker.Street()
		email := fmt.Sprintf("contact@%s.example.org", strings.ToLower(code))

		h := &hospital.Hospital{
			Name:    faker.Company() + " Hospital",
			Code:    code,
			Address: &address,
			City:    &city,
			Country: &country,
			Phone:   &phone,
			Email:   &email,
		}
		if err := hospitalSvc.Create(ctx, h); err != nil {
			return fmt.Errorf("create hospital %s: %w", code, err)
		}
		if _, err := hospitalSvc.Approve(ctx, h.ID); err != nil {
			return fmt.Errorf("approve hospital %s: %w", code, err)
		}
		hospitals = append(hospitals, h)

		// Staffing: one manager, two doctors, two staff per hospital.
		roles := []string{
			auth.RoleHospitalManager,
			auth.RoleDoctor, auth.RoleDoctor,
			auth.RoleStaff, auth.RoleStaff,
		}
		for j, role := range roles {
			hid := h.ID
			u := &identity.User{
				Email:      fmt.Sprintf("user%d@%s.example.org", j+1, strings.ToLower(code)),
				FullName:   faker.FirstName() + " " + faker.LastName(),
				Role:       role,
				HospitalID: &hid,
			}
			if err := identitySvc.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("create user for %s: %w", code, err)
			}
			if role == auth.RoleDoctor {
				doctors[code] = append(doctors[code], u)
			}
		}

		for j := 0; j < patientsPerHospital; j++ {
			gender := faker.Gender()
			birth := faker.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
			)
			p := &identity.Patient{
				PatientID:  fmt.Sprintf("P-%s-%04d", code, j+1),
				FirstName:  faker.FirstName(),
				LastName:   faker.LastName(),
				Gender:     &gender,
				BirthDate:  &birth,
				HospitalID: h.ID,
			}
			if err := identitySvc.RegisterPatient(ctx, p); err != nil {
				return fmt.Errorf("register patient for %s: %w", code, err)
			}
			patients[code] = append(patients[code], p)
		}

		for _, dt := range seedDataTypes {
			e := &endpoint.DataRequestEndpoint{
				HospitalID:       h.ID,
				DataType:         dt.dataType,
				URL:              fmt.Sprintf("https://fhir.%s.example.org/%s", strings.ToLower(code), dt.fhirResource),
				FHIRResourceType: dt.fhirResource,
			}
			if err := endpointSvc.Upsert(ctx, e); err != nil {
				return fmt.Errorf("register endpoint %s/%s: %w", code, dt.dataType, err)
			}
		}
	}

	// Cross-hospital consents: each patient of hospital i grants the next
	// hospital access to a couple of clinical data types.
	consentCount := 0
	for i, h := range hospitals {
		if len(hospitals) < 2 {
			break
		}
		granter := hospitals[(i+1)%len(hospitals)]
		granterDoctors := doctors[granter.Code]
		if len(granterDoctors) == 0 {
			continue
		}
		for _, p := range patients[h.Code] {
			if faker.Number(1, 100) > 40 {
				continue
			}
			expiry := time.Now().AddDate(1, 0, 0)
			for _, dt := range []string{auth.DataTypeMedicalHistory, auth.DataTypeLabResults} {
				_, err := consentSvc.Record(ctx, consent.RecordParams{
					PatientID:            p.ID,
					RequestingUserID:     granterDoctors[0].ID,
					RequestingHospitalID: granter.ID,
					DataType:             dt,
					Decision:             true,
					ExpiryDate:           &expiry,
				})
				if err != nil {
					return fmt.Errorf("record consent for %s: %w", p.PatientID, err)
				}
				consentCount++
			}
		}
	}

	feedbackCount := 0
	for _, h := range hospitals {
		hDoctors := doctors[h.Code]
		for _, p := range patients[h.Code] {
			if len(hDoctors) == 0 || faker.Number(1, 100) > 60 {
				continue
			}
			doctor := hDoctors[faker.Number(0, len(hDoctors)-1)]
			var comment string
			switch faker.Number(1, 3) {
			case 1:
				comment = positiveComments[faker.Number(0, len(positiveComments)-1)]
			case 2:
				comment = negativeComments[faker.Number(0, len(negativeComments)-1)]
			default:
				comment = neutralComments[faker.Number(0, len(neutralComments)-1)]
			}
			_, err := feedbackSvc.Submit(ctx, feedback.SubmitParams{
				PatientID:           p.ID,
				DoctorID:            doctor.ID,
				HospitalID:          h.ID,
				PreTreatmentRating:  faker.Number(1, 5),
				PostTreatmentRating: faker.Number(1, 5),
				SatisfactionRating:  faker.Number(1, 5),
				Comments:            &comment,
			})
			if err != nil {
				return fmt.Errorf("submit feedback for %s: %w", p.PatientID, err)
			}
			feedbackCount++
		}
	}

	fmt.Printf("Seeded %d hospitals, %d patients each, %d consents, %d feedback records.\n",
		len(hospitals), patientsPerHospital, consentCount, feedbackCount)
	return nil
}
