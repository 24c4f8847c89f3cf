package shared

// Module keys recognised by the application shell. The vocabulary is open:
// the access layer evaluates unknown keys the same way, these constants only
// name the screens the current UI ships with.
const (
	ModuleDashboard     = "dashboard"
	ModuleStudents      = "students"
	ModuleStaff         = "staff"
	ModuleClasses       = "classes"
	ModuleFinance       = "finance"
	ModuleAnnouncements = "announcements"
	ModuleSettings      = "settings"
)

// KnownModules lists the module keys shipped with the UI, in display order.
func KnownModules() []string {
	return []string{
		ModuleDashboard,
		ModuleStudents,
		ModuleStaff,
		ModuleClasses,
		ModuleFinance,
		ModuleAnnouncements,
		ModuleSettings,
	}
}
