package notification

import (
	"fmt"
	"html/template"
	"strings"
)

// Message is a rendered notification ready for transport
type Message struct {
	Subject  string
	BodyHTML string
}

// emailView is the data model shared by all email templates. Builders fill
// it from the kind's required payload fields.
type emailView struct {
	Name        string
	Heading     string
	Intro       string
	Lines       []string
	ButtonLabel string
	ButtonURL   string
	Footer      string
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 12px; text-align: center; }
      .content { padding: 30px 20px; }
      .button { display: inline-block; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 15px 30px; text-decoration: none; border-radius: 12px; font-weight: 600; margin-top: 20px; }
      .footer { text-align: center; padding: 20px; color: #666; font-size: 14px; }
      ul { list-style: none; padding: 0; }
      li { padding: 10px 0; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1>{{.Heading}}</h1>
      </div>
      <div class="content">
        <p>Hi {{.Name}}!</p>
        <p>{{.Intro}}</p>
        {{- if .Lines}}
        <ul>
          {{- range .Lines}}
          <li>{{.}}</li>
          {{- end}}
        </ul>
        {{- end}}
        {{- if .ButtonURL}}
        <a href="{{.ButtonURL}}" class="button">{{.ButtonLabel}}</a>
        {{- end}}
      </div>
      {{- if .Footer}}
      <div class="footer">
        <p>{{.Footer}}</p>
      </div>
      {{- end}}
    </div>
  </body>
</html>
`))

// Render resolves a kind and its payload into a complete message. Missing
// or malformed payload fields are reported via ErrMissingField and
// ErrMalformedField so callers can classify the failure as permanent.
func Render(kind Kind, p Payload, appURL string) (Message, error) {
	subject, view, err := buildView(kind, p, appURL)
	if err != nil {
		return Message{}, fmt.Errorf("rendering %s: %w", kind, err)
	}

	var sb strings.Builder
	if err := emailLayout.Execute(&sb, view); err != nil {
		return Message{}, fmt.Errorf("rendering %s: %w", kind, err)
	}

	return Message{Subject: subject, BodyHTML: sb.String()}, nil
}

func buildView(kind Kind, p Payload, appURL string) (string, emailView, error) {
	name, err := p.String("name")
	if err != nil {
		return "", emailView{}, err
	}

	view := emailView{
		Name:        name,
		ButtonLabel: "Go to Intentional",
		ButtonURL:   appURL,
	}

	switch kind {
	case KindDailyCheckin:
		view.Heading = "Daily Check-In Time!"
		view.Intro = "Time for your daily wellness check-in. Let's keep that streak going!"
		view.Lines = []string{
			"Log your meals",
			"Track your water intake",
			"Update your journal",
			"Record your mood",
		}
		view.Footer = "You're doing great! Keep up the momentum."
		return "Daily Check-In Reminder - Intentional", view, nil

	case KindWeeklyCheckin:
		view.Heading = "Weekly Check-In Time!"
		view.Intro = "It's time for your weekly wellness check-in. Let's review your progress!"
		view.Lines = []string{
			"Log your weekly weigh-in",
			"Review your progress",
			"Set goals for next week",
			"Celebrate your wins!",
		}
		view.ButtonLabel = "Complete Weekly Check-In"
		view.ButtonURL = appURL + "/progress"
		view.Footer = "Every week is a fresh start. You've got this!"
		return "Weekly Check-In Reminder - Intentional", view, nil

	case KindMealReminder:
		mealType, err := p.String("mealType")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "Meal Time!"
		view.Intro = fmt.Sprintf("Don't forget to log your %s. Tracking every meal keeps your goals in sight.", mealType)
		view.ButtonLabel = "Log Your Meal"
		view.Footer = "Consistency beats perfection."
		return fmt.Sprintf("%s Reminder - Intentional", mealType), view, nil

	case KindAchievementUnlocked:
		achievementName, err := p.String("achievementName")
		if err != nil {
			return "", emailView{}, err
		}
		description, err := p.String("achievementDescription")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "Achievement Unlocked!"
		view.Intro = fmt.Sprintf("Congratulations, you just earned %q: %s", achievementName, description)
		view.ButtonLabel = "View Your Achievements"
		view.ButtonURL = appURL + "/achievements"
		view.Footer = "Keep collecting those wins!"
		return fmt.Sprintf("Achievement Unlocked: %s - Intentional", achievementName), view, nil

	case KindChallengeNew:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		description, err := p.String("challengeDescription")
		if err != nil {
			return "", emailView{}, err
		}
		challengeType, err := p.String("challengeType")
		if err != nil {
			return "", emailView{}, err
		}
		duration, err := p.Number("duration")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "New Challenge Available!"
		view.Intro = fmt.Sprintf("A new %s challenge just launched: %s. %s", challengeType, challengeName, description)
		view.Lines = []string{
			fmt.Sprintf("Duration: %.0f days", duration),
			"Daily tasks to keep you on track",
			"Compete with the community",
		}
		view.ButtonLabel = "Join the Challenge"
		view.ButtonURL = appURL + "/challenges"
		return fmt.Sprintf("New Challenge: %s - Intentional", challengeName), view, nil

	case KindChallengeJoined:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		startDate, err := p.String("startDate")
		if err != nil {
			return "", emailView{}, err
		}
		duration, err := p.Number("duration")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "You're In!"
		view.Intro = fmt.Sprintf("You joined %s. It starts on %s and runs for %.0f days.", challengeName, startDate, duration)
		view.ButtonLabel = "View Challenge"
		view.ButtonURL = appURL + "/challenges"
		view.Footer = "Get ready to show up for yourself."
		return fmt.Sprintf("Challenge Joined: %s - Intentional", challengeName), view, nil

	case KindChallengeStartingSoon:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		startDate, err := p.String("startDate")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "Starting Soon!"
		view.Intro = fmt.Sprintf("%s kicks off on %s. Make sure you're ready!", challengeName, startDate)
		view.ButtonLabel = "View Challenge"
		view.ButtonURL = appURL + "/challenges"
		return fmt.Sprintf("Starting Soon: %s - Intentional", challengeName), view, nil

	case KindDailyTaskReminder:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		tasksCompleted, err := p.Number("tasksCompleted")
		if err != nil {
			return "", emailView{}, err
		}
		totalTasks, err := p.Number("totalTasks")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "Today's Tasks Are Waiting"
		view.Intro = fmt.Sprintf("You've completed %.0f of %.0f tasks in %s today.", tasksCompleted, totalTasks, challengeName)
		view.ButtonLabel = "Complete Your Tasks"
		view.ButtonURL = appURL + "/challenges"
		view.Footer = "Small steps add up."
		return fmt.Sprintf("Daily Task Reminder: %s - Intentional", challengeName), view, nil

	case KindChallengeCompleted:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		completionRate, err := p.Number("completionRate")
		if err != nil {
			return "", emailView{}, err
		}
		rank, err := p.Number("rank")
		if err != nil {
			return "", emailView{}, err
		}
		totalParticipants, err := p.Number("totalParticipants")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "Challenge Complete!"
		view.Intro = fmt.Sprintf("You finished %s!", challengeName)
		view.Lines = []string{
			fmt.Sprintf("Completion rate: %.1f%%", completionRate),
			fmt.Sprintf("Final rank: %.0f of %.0f participants", rank, totalParticipants),
		}
		view.ButtonLabel = "See Your Results"
		view.ButtonURL = appURL + "/challenges"
		view.Footer = "Proud of you. On to the next one!"
		return fmt.Sprintf("Challenge Complete: %s - Intentional", challengeName), view, nil

	case KindDailyTaskCreated:
		challengeName, err := p.String("challengeName")
		if err != nil {
			return "", emailView{}, err
		}
		taskTitle, err := p.String("taskTitle")
		if err != nil {
			return "", emailView{}, err
		}
		taskDescription, err := p.String("taskDescription")
		if err != nil {
			return "", emailView{}, err
		}
		taskType, err := p.String("taskType")
		if err != nil {
			return "", emailView{}, err
		}
		points, err := p.Number("points")
		if err != nil {
			return "", emailView{}, err
		}
		taskDate, err := p.String("taskDate")
		if err != nil {
			return "", emailView{}, err
		}
		view.Heading = "New Task Posted"
		view.Intro = fmt.Sprintf("A new %s task was added to %s for %s.", taskType, challengeName, taskDate)
		view.Lines = []string{
			fmt.Sprintf("%s: %s", taskTitle, taskDescription),
			fmt.Sprintf("Worth %.0f points", points),
		}
		view.ButtonLabel = "View Task"
		view.ButtonURL = appURL + "/challenges"
		return fmt.Sprintf("New Task: %s - Intentional", taskTitle), view, nil
	}

	return "", emailView{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
