package cmd

import (
	"fmt"
	"strings"

	"github.com/hireview/hireview/internal/hrbackend"
	"github.com/hireview/hireview/internal/listview"
	"github.com/hireview/hireview/internal/reconciler"
)

func candidateLabel(c *hrbackend.Candidate) string {
	return fmt.Sprintf("%s  %s / %s / %s", c.Ref(), c.FullName, c.Email, c.Status)
}

func renderList(snap listview.Snapshot) {
	fmt.Println()

	if snap.LoadError != "" {
		fmt.Printf("! %s\n", snap.LoadError)
		return
	}

	if snap.Empty() {
		fmt.Println("No candidates found. Adjust the search or the filter.")
		return
	}

	line := fmt.Sprintf("%d candidate(s), filter %s", len(snap.Candidates), snap.Filter)
	if snap.Query != "" {
		line += fmt.Sprintf(", search %q", snap.Query)
	}
	fmt.Println(line)
}

func renderDetail(state reconciler.State) {
	c := state.Candidate

	fmt.Println()
	fmt.Printf("%s <%s>\n", c.FullName, c.Email)
	fmt.Printf("Status: %s\n", state.Status)

	if resume := c.PrimaryResume(); resume != nil {
		fmt.Printf("Resume: %s\n", resume.ResumeURL)
	} else {
		fmt.Println("Resume: none on file")
	}
	if !c.CanAsk() {
		fmt.Println("Questions are unavailable: no resume text to ask about.")
	}

	switch {
	case state.Enriching:
		fmt.Println("Enrichment: fetching...")
	case state.Bundle.Empty():
		fmt.Println("Enrichment: no data")
	default:
		fmt.Printf("Enrichment: %s\n", strings.Join(bundleSources(state.Bundle), ", "))
	}

	fmt.Printf("Questions asked: %d\n", len(state.History))

	if state.LastAskError != "" {
		fmt.Printf("! last question failed: %s\n", state.LastAskError)
	}
}

func bundleSources(bundle *reconciler.Bundle) []string {
	var sources []string
	if bundle.LinkedIn != nil {
		sources = append(sources, string(hrbackend.SourceLinkedIn))
	}
	if bundle.Github != nil {
		sources = append(sources, string(hrbackend.SourceGithub))
	}
	if bundle.Portfolio != nil {
		sources = append(sources, string(hrbackend.SourcePortfolio))
	}
	return sources
}

func renderAnswer(answer *hrbackend.AIAnswer) {
	fmt.Println()
	if answer.BriefSummary != "" {
		fmt.Printf("Summary: %s\n", answer.BriefSummary)
	}
	if answer.DetailedAnswer != "" {
		fmt.Println(answer.DetailedAnswer)
	}
	for _, point := range answer.BulletPoints {
		fmt.Printf("  - %s\n", point)
	}
	if len(answer.SuggestedFollowups) > 0 {
		fmt.Println("Suggested follow-ups:")
		for _, followup := range answer.SuggestedFollowups {
			fmt.Printf("  * %s\n", followup)
		}
	}
}

func renderHistory(history []*hrbackend.QuestionLog) {
	fmt.Println()
	if len(history) == 0 {
		fmt.Println("No questions asked yet.")
		return
	}

	for _, entry := range history {
		fmt.Printf("Q: %s\n", entry.Question)
		fmt.Printf("A: %s\n", entry.Summary())
		if entry.CreatedAt != "" {
			fmt.Printf("   asked at %s\n", entry.CreatedAt)
		}
		fmt.Println()
	}
}

func renderBundle(bundle *reconciler.Bundle) {
	fmt.Println()
	if bundle.Empty() {
		fmt.Println("No enrichment data. The candidate may have no profile links, or every fetch failed.")
		return
	}

	if data := bundle.LinkedIn; data != nil {
		fmt.Println("LinkedIn:")
		if data.CurrentRole != "" {
			fmt.Printf("  role: %s\n", data.CurrentRole)
		}
		if data.Summary != "" {
			fmt.Printf("  %s\n", data.Summary)
		}
		if len(data.Skills) > 0 {
			fmt.Printf("  skills: %s\n", strings.Join(data.Skills, ", "))
		}
		for _, line := range data.Experience {
			fmt.Printf("  experience: %s\n", line)
		}
		for _, line := range data.Education {
			fmt.Printf("  education: %s\n", line)
		}
	}

	if data := bundle.Github; data != nil {
		fmt.Println("Github:")
		if data.Bio != "" {
			fmt.Printf("  %s\n", data.Bio)
		}
		for _, repo := range data.TopRepos {
			fmt.Printf("  %s (%s, %d stars): %s\n", repo.Name, repo.Language, repo.Stars, repo.Description)
		}
	}

	if data := bundle.Portfolio; data != nil {
		fmt.Println("Portfolio:")
		for _, project := range data.Projects {
			fmt.Printf("  %s: %s\n", project.Title, project.Description)
		}
	}
}
