package clinic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorFilter_OmitsEmptyFields(t *testing.T) {
	f := DoctorFilter{Name: "", Time: "10:00", Specialty: ""}
	assert.Equal(t, "time=10%3A00", f.Query().Encode())

	f = DoctorFilter{Name: "  ", Time: "", Specialty: ""}
	assert.True(t, f.IsZero())

	f = DoctorFilter{Name: "Ada", Time: "AM", Specialty: "Cardiology"}
	assert.Equal(t, "name=Ada&specialty=Cardiology&time=AM", f.Query().Encode())
}

func TestAppointmentFilter_Query(t *testing.T) {
	assert.Equal(t, "condition=pending", AppointmentFilter{Condition: "pending"}.Query().Encode())
	assert.True(t, AppointmentFilter{}.IsZero())
}

func TestDoctor_AvailabilityText(t *testing.T) {
	d := Doctor{Availability: []string{"09:00-10:00", "10:00-11:00"}}
	assert.Equal(t, "09:00-10:00, 10:00-11:00", d.AvailabilityText())
	assert.Equal(t, "", Doctor{}.AvailabilityText())
}

func TestAppointment_Decode(t *testing.T) {
	raw := `{"id":4,"doctor":{"id":1,"name":"Dr. Grey"},"patient":{"id":9,"name":"Sam"},
		"appointmentTime":"2026-10-18T09:30:00","status":1}`

	var a Appointment
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, "Sam", a.PatientName())
	assert.Equal(t, "Dr. Grey", a.DoctorName())
	assert.Equal(t, "2026-10-18", a.Date())
	assert.Equal(t, "Completed", a.Status.String())
}

func TestLocalTime_RejectsGarbage(t *testing.T) {
	var lt LocalTime
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &lt))
	require.NoError(t, json.Unmarshal([]byte(`null`), &lt))
	assert.True(t, lt.IsZero())
}
