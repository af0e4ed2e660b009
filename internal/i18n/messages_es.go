package i18n

var messagesES = map[string]string{
	"auth.error.email_in_use":          "Este email ya está registrado",
	"auth.error.invalid_email":         "Email inválido",
	"auth.error.operation_not_allowed": "Operación no permitida",
	"auth.error.weak_password":         "La contraseña es muy débil",
	"auth.error.user_disabled":         "Esta cuenta ha sido deshabilitada",
	"auth.error.user_not_found":        "No existe una cuenta con este email",
	"auth.error.wrong_password":        "Contraseña incorrecta",
	"auth.error.invalid_credential":    "Credenciales inválidas",
	"auth.error.too_many_requests":     "Demasiados intentos fallidos. Intenta más tarde",
	"auth.error.network":               "Error de conexión. Verifica tu internet",
	"auth.error.unexpected":            "Ha ocurrido un error inesperado",

	"validation.all_fields_required":     "Todos los campos son obligatorios",
	"validation.email_password_required": "Email y contraseña son obligatorios",
	"validation.password_too_short":      "La contraseña debe tener al menos 6 caracteres",
	"validation.invalid_email":           "Por favor, ingresa un email válido",

	"register.success": "¡Registro exitoso! Redirigiendo al inicio...",
	"login.success":    "¡Inicio de sesión exitoso! Redirigiendo al inicio...",
	"logout.success":   "Sesión cerrada correctamente",
	"logout.error":     "Error al cerrar sesión",
	"logout.confirm":   "¿Estás seguro de que quieres cerrar sesión?",

	"dashboard.load_error":         "Error al cargar el dashboard",
	"dashboard.refreshed":          "Información actualizada",
	"dashboard.refresh_error":      "Error al actualizar información",
	"dashboard.user_fallback":      "Usuario",
	"dashboard.date_unavailable":   "Fecha no disponible",
	"dashboard.greeting.morning":   "Buenos días",
	"dashboard.greeting.afternoon": "Buenas tardes",
	"dashboard.greeting.evening":   "Buenas noches",
	"dashboard.greeting":           "%s, %s!",

	"date.long": "%[2]d de %[1]s de %[3]d, %02[4]d:%02[5]d",
	"month.1":   "enero",
	"month.2":   "febrero",
	"month.3":   "marzo",
	"month.4":   "abril",
	"month.5":   "mayo",
	"month.6":   "junio",
	"month.7":   "julio",
	"month.8":   "agosto",
	"month.9":   "septiembre",
	"month.10":  "octubre",
	"month.11":  "noviembre",
	"month.12":  "diciembre",

	"page.title":           "Cuenta",
	"page.home":            "Inicio",
	"page.login":           "Iniciar sesión",
	"page.register":        "Crear cuenta",
	"page.dashboard":       "Panel",
	"page.logout":          "Cerrar sesión",
	"page.refresh":         "Actualizar",
	"page.cancel":          "Cancelar",
	"page.loading":         "Cargando...",
	"form.email":           "Email",
	"form.password":        "Contraseña",
	"form.full_name":       "Nombre completo",
	"dashboard.name":       "Nombre",
	"dashboard.email":      "Email",
	"dashboard.registered": "Fecha de registro",
	"dashboard.last_login": "Último acceso",
	"index.welcome":        "Bienvenido",
}
