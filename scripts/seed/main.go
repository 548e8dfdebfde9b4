// Command seed loads a demo catalog into a running API instance: one term,
// a handful of courses with sections and weekly meetings. Useful for local
// development and demo environments.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type meeting struct {
	Day         string `json:"day"`
	StartMinute int    `json:"startMinute"`
	EndMinute   int    `json:"endMinute"`
	Location    string `json:"location"`
	Type        string `json:"type"`
}

type section struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	Capacity   int    `json:"capacity"`
	IsOnline   bool   `json:"isOnline"`
	Meetings   []meeting
}

type course struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Credits  int    `json:"credits"`
	Required bool   `json:"required"`
	Sections []section
}

func main() {
	var (
		base    string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	termID, err := createTerm(client, base)
	if err != nil {
		log.Fatalf("failed to create term: %v", err)
	}
	log.Printf("created term %s", termID)

	for _, c := range demoCatalog() {
		courseID, err := createCourse(client, base, termID, c)
		if err != nil {
			log.Fatalf("failed to create course %s: %v", c.Code, err)
		}
		for _, s := range c.Sections {
			sectionID, err := createSection(client, base, courseID, s)
			if err != nil {
				log.Fatalf("failed to create section %s/%s: %v", c.Code, s.Name, err)
			}
			for _, m := range s.Meetings {
				if err := createMeeting(client, base, sectionID, m); err != nil {
					log.Fatalf("failed to create meeting for %s/%s: %v", c.Code, s.Name, err)
				}
			}
		}
		log.Printf("created course %s with %d sections", c.Code, len(c.Sections))
	}

	if err := activateTerm(client, base, termID); err != nil {
		log.Fatalf("failed to activate term: %v", err)
	}
	log.Printf("seed complete, term %s active", termID)
}

func createTerm(client *http.Client, base string) (string, error) {
	payload := map[string]interface{}{"name": "Fall 2026", "academicYear": "2026-2027"}
	return postForID(client, base+"/terms", payload)
}

func createCourse(client *http.Client, base, termID string, c course) (string, error) {
	payload := map[string]interface{}{
		"code":     c.Code,
		"name":     c.Name,
		"credits":  c.Credits,
		"required": c.Required,
	}
	return postForID(client, fmt.Sprintf("%s/terms/%s/courses", base, termID), payload)
}

func createSection(client *http.Client, base, courseID string, s section) (string, error) {
	payload := map[string]interface{}{
		"name":       s.Name,
		"instructor": s.Instructor,
		"capacity":   s.Capacity,
		"isOnline":   s.IsOnline,
	}
	return postForID(client, fmt.Sprintf("%s/courses/%s/sections", base, courseID), payload)
}

func createMeeting(client *http.Client, base, sectionID string, m meeting) error {
	_, err := postForID(client, fmt.Sprintf("%s/sections/%s/meetings", base, sectionID), m)
	return err
}

func activateTerm(client *http.Client, base, termID string) error {
	resp, err := client.Post(fmt.Sprintf("%s/terms/%s/activate", base, termID), "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func postForID(client *http.Client, url string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", err
	}
	return envelope.Data.ID, nil
}

func demoCatalog() []course {
	return []course{
		{
			Code: "MATH101", Name: "Calculus I", Credits: 4, Required: true,
			Sections: []section{
				{Name: "A", Instructor: "Dr. Kaya", Capacity: 60, Meetings: []meeting{
					{Day: "Mon", StartMinute: 540, EndMinute: 650, Location: "B201", Type: "LECTURE"},
					{Day: "Wed", StartMinute: 540, EndMinute: 650, Location: "B201", Type: "LECTURE"},
				}},
				{Name: "B", Instructor: "Dr. Arslan", Capacity: 60, Meetings: []meeting{
					{Day: "Tue", StartMinute: 660, EndMinute: 770, Location: "B105", Type: "LECTURE"},
					{Day: "Thu", StartMinute: 660, EndMinute: 770, Location: "B105", Type: "LECTURE"},
				}},
			},
		},
		{
			Code: "PHYS102", Name: "Physics II", Credits: 4, Required: true,
			Sections: []section{
				{Name: "A", Instructor: "Dr. Demir", Capacity: 80, Meetings: []meeting{
					{Day: "Mon", StartMinute: 780, EndMinute: 890, Location: "F12", Type: "LECTURE"},
					{Day: "Fri", StartMinute: 540, EndMinute: 650, Location: "F12", Type: "LAB"},
				}},
			},
		},
		{
			Code: "CS150", Name: "Introduction to Programming", Credits: 3, Required: false,
			Sections: []section{
				{Name: "A", Instructor: "Dr. Yildiz", Capacity: 45, Meetings: []meeting{
					{Day: "Tue", StartMinute: 540, EndMinute: 650, Location: "Lab 3", Type: "LECTURE"},
					{Day: "Thu", StartMinute: 540, EndMinute: 590, Location: "Lab 3", Type: "RECITATION"},
				}},
				{Name: "B", Instructor: "Dr. Yildiz", Capacity: 45, IsOnline: true, Meetings: []meeting{
					{Day: "Wed", StartMinute: 1020, EndMinute: 1130, Location: "Online", Type: "LECTURE"},
				}},
			},
		},
	}
}
