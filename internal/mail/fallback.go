package mail

// Hardcoded fallback templates, used when no stored EmailTemplate matches.
// Kept as data so they render through the same substitution path as stored
// templates and can be tested without touching dispatch control flow.

type fallbackTemplate struct {
	Subject  string
	TextBody string
	HTMLBody string
}

var fallbackTemplates = map[Kind]fallbackTemplate{
	KindWelcome: {
		Subject: "Welcome to SurveyHub{{org_text}}",
		TextBody: "{{greeting}},\n\n" +
			"An account has been created for you{{org_text}}.\n\n" +
			"Username: {{username}}\n" +
			"Password: {{password}}\n" +
			"Survey code: {{survey_code}}\n\n" +
			"Please log in and complete your survey{{deadline_text}}.\n",
		HTMLBody: "<p>{{greeting}},</p>" +
			"<p>An account has been created for you{{org_text}}.</p>" +
			"<p>Username: <b>{{username}}</b><br>" +
			"Password: <b>{{password}}</b><br>" +
			"Survey code: <b>{{survey_code}}</b></p>" +
			"<p>Please log in and complete your survey{{deadline_text}}.</p>",
	},
	KindAssignment: {
		Subject: "A survey has been assigned to you{{org_text}}",
		TextBody: "{{greeting}},\n\n" +
			"A survey has been assigned to you{{assigned_by_text}}{{org_text}}.\n\n" +
			"Username: {{username}}\n" +
			"Survey code: {{survey_code}}\n\n" +
			"Please log in with your existing credentials and complete it{{deadline_text}}.\n",
		HTMLBody: "<p>{{greeting}},</p>" +
			"<p>A survey has been assigned to you{{assigned_by_text}}{{org_text}}.</p>" +
			"<p>Username: <b>{{username}}</b><br>" +
			"Survey code: <b>{{survey_code}}</b></p>" +
			"<p>Please log in with your existing credentials and complete it{{deadline_text}}.</p>",
	},
	KindReminder: {
		Subject: "Reminder: your survey is waiting{{org_text}}",
		TextBody: "{{greeting}},\n\n" +
			"This is a reminder that your survey{{org_text}} has not been completed yet.\n\n" +
			"Survey code: {{survey_code}}\n\n" +
			"Please complete it{{deadline_text}}.\n",
		HTMLBody: "<p>{{greeting}},</p>" +
			"<p>This is a reminder that your survey{{org_text}} has not been completed yet.</p>" +
			"<p>Survey code: <b>{{survey_code}}</b></p>" +
			"<p>Please complete it{{deadline_text}}.</p>",
	},
}
