package usecase

import (
	"fmt"
	"math"
	"sort"

	"trainingportal/domain"
)

// ComputeStats summarizes attendance per employee. Employees come from the names map
// and from the records; the result is ordered by employee ID.
//
// Present counts PRESENT and JUSTIFIED records, Justified is the JUSTIFIED subset.
// The percentage is present over total lessons rounded half away from zero, and 0 for
// an edition without lessons.
func ComputeStats(lessons []domain.Lesson, records []domain.AttendanceRecord, employees map[uint]string, minimumPercentage int) []domain.EmployeeStats {
	hours := make(map[uint]float64, len(lessons))
	var totalHours float64
	for _, l := range lessons {
		hours[l.ID] = l.DurationHours
		totalHours += l.DurationHours
	}

	byEmployee := make(map[uint]*domain.EmployeeStats, len(employees))
	row := func(id uint) *domain.EmployeeStats {
		if s, ok := byEmployee[id]; ok {
			return s
		}
		name, ok := employees[id]
		if !ok || name == "" {
			name = fmt.Sprintf("Employee #%d", id)
		}
		s := &domain.EmployeeStats{
			EmployeeID:   id,
			EmployeeName: name,
			TotalLessons: len(lessons),
			TotalHours:   totalHours,
		}
		byEmployee[id] = s
		return s
	}

	for id := range employees {
		row(id)
	}

	for _, r := range records {
		lessonHours, ok := hours[r.LessonID]
		if !ok {
			continue
		}
		s := row(r.EmployeeID)
		switch r.Status {
		case domain.AttendancePresent:
			s.Present++
		case domain.AttendanceJustified:
			s.Present++
			s.Justified++
		case domain.AttendanceAbsent:
			s.Absent++
		}
		if r.Status.Counts() {
			s.AttendedHours += lessonHours
		}
	}

	out := make([]domain.EmployeeStats, 0, len(byEmployee))
	for _, s := range byEmployee {
		if s.TotalLessons > 0 {
			s.Percentage = int(math.Round(float64(s.Present) / float64(s.TotalLessons) * 100))
		}
		s.BelowMinimum = s.Percentage < minimumPercentage
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// BelowMinimum keeps the rows flagged under the attendance threshold.
func BelowMinimum(stats []domain.EmployeeStats) []domain.EmployeeStats {
	out := make([]domain.EmployeeStats, 0)
	for _, s := range stats {
		if s.BelowMinimum {
			out = append(out, s)
		}
	}
	return out
}
