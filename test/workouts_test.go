package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
)

func (s *IntegrationTestSuite) doRequest(method, path, body string, withToken bool) *http.Response {
	req, err := http.NewRequestWithContext(context.Background(), method, serverEndpoint+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		req.Header.Set(middleware.TokenHeader, testToken)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *IntegrationTestSuite) decode(resp *http.Response, v any) {
	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(respBytes, v), string(respBytes))
}

func (s *IntegrationTestSuite) addPlanExercise(slot workouts.WeekdaySlot, name string) workouts.TemplateExercise {
	body := fmt.Sprintf(`{"name":%q,"category":"strength","sets":3,"reps":10}`, name)
	resp := s.doRequest(http.MethodPost, "/plan/"+string(slot), body, true)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var exercise workouts.TemplateExercise
	s.decode(resp, &exercise)
	s.Require().NotEmpty(exercise.ID)
	return exercise
}

func (s *IntegrationTestSuite) getDay(date string) workouts.Day {
	resp := s.doRequest(http.MethodGet, "/days/"+date, "", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var day workouts.Day
	s.decode(resp, &day)
	return day
}

func (s *IntegrationTestSuite) TestWrites_Unauthorized() {
	resp := s.doRequest(http.MethodPost, "/plan/sunday", `{"name":"Run"}`, false)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.doRequest(http.MethodGet, "/plan", "", false)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestPlan_StoredInPostgres() {
	name := gofakeit.Name()
	exercise := s.addPlanExercise(workouts.Thursday, name)

	var storedName string
	err := s.DB.QueryRow(
		"SELECT name FROM workout_template_exercise WHERE weekday = $1 AND id = $2",
		string(workouts.Thursday), exercise.ID,
	).Scan(&storedName)
	s.Require().NoError(err)
	s.Equal(name, storedName)

	resp := s.doRequest(http.MethodPut, "/plan/thursday/"+exercise.ID, `{"name":"Deadlift","category":"strength"}`, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.doRequest(http.MethodGet, "/plan", "", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var plan workouts.WeekPlan
	s.decode(resp, &plan)
	found := false
	for _, ex := range plan[workouts.Thursday] {
		if ex.ID == exercise.ID {
			found = true
			s.Equal("Deadlift", ex.Name)
		}
	}
	s.True(found)

	resp = s.doRequest(http.MethodDelete, "/plan/thursday/"+exercise.ID, "", true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.doRequest(http.MethodDelete, "/plan/thursday/"+exercise.ID, "", true)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestToggle_RoundTripThroughRedis() {
	// 2024-01-03 is a Wednesday
	const date = "2024-01-03"
	exercise := s.addPlanExercise(workouts.Wednesday, gofakeit.Name())

	toggleBody := fmt.Sprintf(`{"source":"plan","id":%q}`, exercise.ID)
	resp := s.doRequest(http.MethodPost, "/days/"+date+"/toggle", toggleBody, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("X-RateLimit-Remaining"))

	var occurrence workouts.Occurrence
	s.decode(resp, &occurrence)
	s.True(occurrence.Completed)

	day := s.getDay(date)
	completed := 0
	for _, occ := range day.Occurrences {
		if occ.ID == exercise.ID {
			s.True(occ.Completed)
		}
		if occ.Completed {
			completed++
		}
	}
	s.Equal(completed, day.Summary.Completed)

	// the following wednesday does not inherit the completion
	nextWeek := s.getDay("2024-01-10")
	for _, occ := range nextWeek.Occurrences {
		s.False(occ.Completed)
	}

	resp = s.doRequest(http.MethodPost, "/days/"+date+"/toggle", toggleBody, true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &occurrence)
	s.False(occurrence.Completed)

	// unknown ids are ignored
	resp = s.doRequest(http.MethodPost, "/days/"+date+"/toggle", `{"source":"plan","id":"missing"}`, true)
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestExtras() {
	const date = "2024-02-10"

	resp := s.doRequest(http.MethodPost, "/days/"+date+"/extras", `{"name":"Stretching","category":"mobility"}`, true)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var extra workouts.ExtraExercise
	s.decode(resp, &extra)
	s.Require().NotEmpty(extra.ID)

	day := s.getDay(date)
	var extras []workouts.Occurrence
	for _, occ := range day.Occurrences {
		if occ.Source == workouts.SourceExtra {
			extras = append(extras, occ)
		}
	}
	s.Require().Len(extras, 1)
	s.Equal("Stretching", extras[0].Name)

	resp = s.doRequest(http.MethodDelete, "/days/"+date+"/extras/"+extra.ID, "", true)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.doRequest(http.MethodDelete, "/days/"+date+"/extras/"+extra.ID, "", true)
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestCalendarMonth() {
	resp := s.doRequest(http.MethodGet, "/calendar/2024/2", "", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var summaries []workouts.DaySummary
	s.decode(resp, &summaries)
	s.Require().Len(summaries, 29)
	s.Equal("2024-02-01", summaries[0].Date.String())
	s.Equal("2024-02-29", summaries[28].Date.String())

	resp = s.doRequest(http.MethodGet, "/calendar/2024/13", "", false)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestVersion() {
	resp := s.doRequest(http.MethodGet, "/version", "", false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("test-version-info", string(body))
}
