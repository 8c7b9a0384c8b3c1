package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleSales    = "sales"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	PermEmployeesRead    = "org.employees.read"
	PermEmployeesWrite   = "org.employees.write"
	PermOrgRead          = "org.departments.read"
	PermOrgWrite         = "org.departments.write"
	PermContractsRead    = "org.contracts.read"
	PermContractsWrite   = "org.contracts.write"
	PermTimesheetRead    = "timesheet.read"
	PermTimesheetWrite   = "timesheet.write"
	PermTimesheetApprove = "timesheet.approve"
	PermPayrollRead      = "payroll.read"
	PermPayrollWrite     = "payroll.write"
	PermPayrollApprove   = "payroll.approve"
	PermPipelineRead     = "pipeline.read"
	PermPipelineWrite    = "pipeline.write"
	PermPipelineManage   = "pipeline.manage"
	PermDocumentsRead    = "documents.read"
	PermDocumentsWrite   = "documents.write"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermOrgRead,
	PermOrgWrite,
	PermContractsRead,
	PermContractsWrite,
	PermTimesheetRead,
	PermTimesheetWrite,
	PermTimesheetApprove,
	PermPayrollRead,
	PermPayrollWrite,
	PermPayrollApprove,
	PermPipelineRead,
	PermPipelineWrite,
	PermPipelineManage,
	PermDocumentsRead,
	PermDocumentsWrite,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOrgRead,
		PermTimesheetRead,
		PermTimesheetWrite,
		PermPayrollRead,
		PermDocumentsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermOrgRead,
		PermContractsRead,
		PermTimesheetRead,
		PermTimesheetWrite,
		PermTimesheetApprove,
		PermPayrollRead,
		PermDocumentsRead,
		PermDocumentsWrite,
	},
	RoleSales: {
		PermEmployeesRead,
		PermOrgRead,
		PermPipelineRead,
		PermPipelineWrite,
		PermDocumentsRead,
		PermDocumentsWrite,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermContractsRead,
		PermContractsWrite,
		PermTimesheetRead,
		PermTimesheetWrite,
		PermTimesheetApprove,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollApprove,
		PermDocumentsRead,
		PermDocumentsWrite,
	},
	RoleAdmin: DefaultPermissions,
}
