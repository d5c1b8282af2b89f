package model

// Primary task database columns.
const (
	ColTicket        = "TICKET"
	ColClient        = "CLIENT"
	ColType          = "Type"
	ColPriority      = "Priority"
	ColStatus        = "Status"
	ColSummary       = "Summary"
	ColCreated       = "Creation Date"
	ColSLALimit      = "SLA Limit"
	ColSLADeadline   = "SLA Deadline"
	ColSLAOverdue    = "SLA Overdue Days"
	ColResolved      = "Resolved Date"
	ColDaysToDone    = "Days to Complete"
	ColCategory      = "Category (Optional)"
	ColComments      = "Comments"
	ColDuplicateID   = "Duplicate ID"
	ColSupport       = "Support Sheet?"
	ColTicketID      = "ticket-id"
	ColURLConcat     = "url_concat"
	ColURLText       = "url_text"
	ColBoardTicket   = "Ticket"
	ColBoardTeam     = "Team"
	ColBoardPlatform = "Platform"
	ColBoardVersion  = "Version"
)

// Jira CSV export columns.
const (
	JiraKey      = "Issue key"
	JiraStatus   = "Status"
	JiraType     = "Issue Type"
	JiraPriority = "Priority"
	JiraSummary  = "Summary"
	JiraCreated  = "Created"
	JiraResolved = "Resolved"
	JiraLabels   = "Labels"
)

// DatabaseColumns is the fixed column order of the primary task database.
var DatabaseColumns = []string{
	ColTicket, ColClient, ColType, ColPriority, ColStatus, ColSummary,
	ColCreated, ColSLALimit, ColSLADeadline, ColSLAOverdue,
	ColResolved, ColDaysToDone, ColCategory, ColComments,
	ColDuplicateID, ColSupport, ColTicketID, ColURLConcat, ColURLText,
}

// BoardColumns is the column order of the triage board.
var BoardColumns = []string{
	ColBoardTicket, ColTicketID, ColClient, ColPriority, ColStatus, ColSummary,
	ColSLAOverdue, ColBoardTeam, ColBoardPlatform, ColBoardVersion, ColComments,
}

// ArchiveColumns is the column order of the archive sheet.
var ArchiveColumns = []string{
	ColBoardTicket, ColTicketID, ColClient, ColType, ColPriority, ColStatus,
	ColSummary, ColCreated, ColResolved, ColBoardPlatform, ColBoardVersion,
}

// SnapshotRename maps Jira export columns onto database columns.
var SnapshotRename = map[string]string{
	JiraKey:      ColTicket,
	JiraStatus:   ColStatus,
	JiraType:     ColType,
	JiraPriority: ColPriority,
	JiraSummary:  ColSummary,
	JiraCreated:  ColCreated,
	JiraResolved: ColResolved,
}
