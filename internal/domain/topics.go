package domain

// RHELModules is the fixed topic manifest question sets are restricted to.
var RHELModules = []string{
	"Module 1: Get started with RHEL (Open source, distributions)",
	"Module 2: Access the command line (Shell, simple commands)",
	"Module 3: Manage files (Copy, move, create, delete, organize)",
	"Module 4: Get help (Local help systems)",
	"Module 5: Create, view, and edit text files (Vim shortcuts)",
	"Module 6: Manage local users and groups (Password policies)",
	"Module 7: Control access to files (Permissions, ACLs, Sticky Bits, Immutability)",
	"Module 8: Monitor and manage Linux processes",
	"Module 9: Control services and daemons (systemd)",
	"Module 10: Configure and secure SSH (OpenSSH)",
	"Module 11: Analyze and store logs (Troubleshooting)",
	"Module 12: Manage networking (Interfaces and settings)",
	"Module 13: Archive and transfer files (rsync)",
	"Module 14: Install and update software (DNF/YUM)",
	"Module 15: Access Linux files systems (Storage)",
	"Troubleshooting: Performance (top, Load Average, atop)",
	"Troubleshooting: CPU/Disk (iostat, sar, iotop)",
	"Troubleshooting: Bandwidth (iftop, iperf)",
	"Troubleshooting: Scheduling (Cron and related files)",
	"Troubleshooting: Core Commands (lsof, grep, awk, ethtool, ifup/down)",
	"Troubleshooting: Critical Files (resolv.conf, hosts, fstab, mnttab)",
}

// Topics returns a copy of the manifest so callers cannot mutate it.
func Topics() []string {
	out := make([]string, len(RHELModules))
	copy(out, RHELModules)
	return out
}

// TierFor maps an overall percentage to its headline verdict.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 90:
		return Tier{Title: "Architect Mastery", Description: "Exemplary technical competence recorded. Candidate exceeds senior administration requirements."}
	case percentage >= 70:
		return Tier{Title: "Lead Professional", Description: "Strong command of RHEL 10 modules. Fully capable of managing enterprise-scale deployments."}
	case percentage >= 50:
		return Tier{Title: "Competent Administrator", Description: "Functional knowledge verified. Targeted training in complex troubleshooting recommended."}
	default:
		return Tier{Title: "Developing Associate", Description: "Foundational gaps identified. Comprehensive training track recommended."}
	}
}
