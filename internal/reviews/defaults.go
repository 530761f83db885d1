package reviews

import "time"

// DefaultReviews is shown when the review service is unreachable or empty.
func DefaultReviews() []*Review {
	return []*Review{
		{
			ID:            "default-1",
			PatientName:   "Sarah M.",
			Rating:        5,
			ReviewText:    "Dr. Smith was incredible. Same-day ADHD consultation was exactly what I needed. The online platform is easy to use and secure. Highly recommend for anyone in NC needing mental health care.",
			ServiceType:   "ADHD Treatment",
			TreatmentDate: "2024-01-15",
			Verified:      true,
			Approved:      true,
			CreatedAt:     time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:            "default-2",
			PatientName:   "Michael R.",
			Rating:        5,
			ReviewText:    "Finally found a psychiatrist who understands! The telepsychiatry service is convenient and professional. No more driving to appointments. Perfect for busy professionals in Raleigh.",
			ServiceType:   "Depression Therapy",
			TreatmentDate: "2024-01-10",
			Verified:      true,
			Approved:      true,
			CreatedAt:     time.Date(2024, 1, 12, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:            "default-3",
			PatientName:   "Jennifer L.",
			Rating:        5,
			ReviewText:    "Anxiety was controlling my life until I found this service. Same-day appointment, caring psychiatrist, and my insurance was accepted. Life-changing experience. Thank you!",
			ServiceType:   "Anxiety Treatment",
			TreatmentDate: "2024-01-08",
			Verified:      true,
			Approved:      true,
			CreatedAt:     time.Date(2024, 1, 10, 16, 45, 0, 0, time.UTC),
		},
		{
			ID:            "default-4",
			PatientName:   "David W.",
			Rating:        5,
			ReviewText:    "Excellent medication management service. Dr. Johnson helped me find the right ADHD medication and dosage. The online follow-ups are convenient and thorough.",
			ServiceType:   "Medication Management",
			TreatmentDate: "2024-01-05",
			Verified:      true,
			Approved:      true,
			CreatedAt:     time.Date(2024, 1, 7, 11, 20, 0, 0, time.UTC),
		},
		{
			ID:            "default-5",
			PatientName:   "Amanda K.",
			Rating:        5,
			ReviewText:    "As a college student, the flexible scheduling was perfect. Evening appointments available, insurance accepted, and the care quality is outstanding. Highly recommend to other students in Durham.",
			ServiceType:   "General Consultation",
			TreatmentDate: "2024-01-03",
			Verified:      true,
			Approved:      true,
			CreatedAt:     time.Date(2024, 1, 5, 9, 15, 0, 0, time.UTC),
		},
	}
}
