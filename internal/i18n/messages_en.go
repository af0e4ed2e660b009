package i18n

var messagesEN = map[string]string{
	// プロバイダーエラー
	"auth.error.email_in_use":          "This email is already registered",
	"auth.error.invalid_email":         "Invalid email",
	"auth.error.operation_not_allowed": "Operation not allowed",
	"auth.error.weak_password":         "Password is too weak",
	"auth.error.user_disabled":         "This account has been disabled",
	"auth.error.user_not_found":        "No account exists with this email",
	"auth.error.wrong_password":        "Incorrect password",
	"auth.error.invalid_credential":    "Invalid credentials",
	"auth.error.too_many_requests":     "Too many failed attempts. Try again later",
	"auth.error.network":               "Connection error. Check your internet",
	"auth.error.unexpected":            "An unexpected error occurred",

	// 入力検証
	"validation.all_fields_required":     "All fields are required",
	"validation.email_password_required": "Email and password are required",
	"validation.password_too_short":      "Password must be at least 6 characters",
	"validation.invalid_email":           "Please enter a valid email",

	// 認証フロー
	"register.success": "Registration successful! Redirecting to home...",
	"login.success":    "Signed in successfully! Redirecting to home...",
	"logout.success":   "Signed out successfully",
	"logout.error":     "Error signing out",
	"logout.confirm":   "Are you sure you want to sign out?",

	// ダッシュボード
	"dashboard.load_error":         "Could not load dashboard",
	"dashboard.refreshed":          "Information updated",
	"dashboard.refresh_error":      "Error updating information",
	"dashboard.user_fallback":      "User",
	"dashboard.date_unavailable":   "Date unavailable",
	"dashboard.greeting.morning":   "Good morning",
	"dashboard.greeting.afternoon": "Good afternoon",
	"dashboard.greeting.evening":   "Good evening",
	"dashboard.greeting":           "%s, %s!",

	// 日付
	"date.long": "%[1]s %[2]d, %[3]d at %02[4]d:%02[5]d",
	"month.1":   "January",
	"month.2":   "February",
	"month.3":   "March",
	"month.4":   "April",
	"month.5":   "May",
	"month.6":   "June",
	"month.7":   "July",
	"month.8":   "August",
	"month.9":   "September",
	"month.10":  "October",
	"month.11":  "November",
	"month.12":  "December",

	// 画面
	"page.title":           "Account",
	"page.home":            "Home",
	"page.login":           "Sign in",
	"page.register":        "Create account",
	"page.dashboard":       "Dashboard",
	"page.logout":          "Sign out",
	"page.refresh":         "Refresh",
	"page.cancel":          "Cancel",
	"page.loading":         "Loading...",
	"form.email":           "Email",
	"form.password":        "Password",
	"form.full_name":       "Full name",
	"dashboard.name":       "Name",
	"dashboard.email":      "Email",
	"dashboard.registered": "Registered",
	"dashboard.last_login": "Last login",
	"index.welcome":        "Welcome",
}
