package providers

import "strings"

// FallbackContent returns locally synthesized section content for a prompt
// when no provider is reachable. The dispatch keys on the section name
// embedded in the prompt, so callers still get topically relevant text.
func FallbackContent(prompt string) string {
	p := strings.ToLower(prompt)

	switch {
	case strings.Contains(p, "introduction"):
		return fallbackIntroduction
	case strings.Contains(p, "daily"), strings.Contains(p, "procedure"):
		return fallbackProcedures
	case strings.Contains(p, "crisis"), strings.Contains(p, "emergency"):
		return fallbackEmergency
	case strings.Contains(p, "training"):
		return fallbackTraining
	case strings.Contains(p, "monitoring"):
		return fallbackMonitoring
	case strings.Contains(p, "documentation"):
		return fallbackDocumentation
	default:
		return fallbackGeneric
	}
}

const fallbackIntroduction = `## Introduction

This Standard Operating Procedure (SOP) establishes the purpose, scope, and overview of operational requirements for this organization.

### Purpose
The purpose of this document is to define consistent, repeatable processes that ensure quality, safety, and regulatory compliance across all operations.

### Scope
This SOP applies to all employees, contractors, and temporary staff involved in daily operations, including management and supervisory personnel.

### Overview
- Establishes baseline operational standards
- Defines roles and responsibilities
- Provides the framework for compliance verification
- Supports onboarding and ongoing training`

const fallbackProcedures = `## Operational Procedures

Follow each step in order. Steps marked as critical must be verified by a supervisor before proceeding.

1. **Preparation**: Review the daily checklist and confirm all required equipment and materials are available.
2. **Execution**: Carry out each process step according to the documented standard, recording completion as you go.
3. **Verification**: Confirm that each completed step meets the defined quality criteria.
4. **Handover**: Document any exceptions or incomplete steps and brief the next shift.

### Key Process Controls
- All procedures must be performed by trained personnel
- Deviations from the standard process require supervisor approval
- Completed step records are retained for audit`

const fallbackEmergency = `## Emergency Response Procedures

In any emergency, personal safety takes priority over property and process.

### Immediate Actions
1. Ensure the safety of all personnel and customers
2. Contact emergency services if required (911)
3. Notify the on-duty manager or designated emergency coordinator
4. Secure the affected area to prevent further incident

### Crisis Communication
- Follow the established notification chain
- Document the incident as soon as it is safe to do so
- Do not make public statements; route inquiries to management

### Recovery
- Resume operations only after formal all-clear
- Complete an incident report within 24 hours`

const fallbackTraining = `## Training Requirements

All personnel must complete required training before performing regulated tasks.

### Onboarding Training
- Orientation covering policies, safety, and role responsibilities
- Supervised practice of all core procedures
- Competency verification by a qualified trainer

### Ongoing Training
- Annual refresher training for all staff
- Additional training whenever procedures change
- Remedial training following any documented deviation

### Records
Training completion is documented and retained in each employee's training record, including dates, content covered, and verifying trainer.`

const fallbackMonitoring = `## Monitoring and Verification

Routine monitoring confirms that procedures are followed and controls remain effective.

### Daily Monitoring
- Complete verification checklists at defined checkpoints
- Record measurements and observations at the time they are taken
- Flag any out-of-range values immediately

### Periodic Review
- Weekly supervisory review of monitoring records
- Monthly trend analysis of deviations and corrective actions
- Annual review of the monitoring program itself

### Corrective Action
When monitoring identifies a deviation, stop the affected process, correct the condition, and document both the deviation and the corrective action taken.`

const fallbackDocumentation = `## Documentation and Record Keeping

Accurate records demonstrate compliance and support continuous improvement.

### Required Records
- Completed procedure checklists and verification forms
- Training records for all personnel
- Incident and corrective action reports
- Equipment maintenance and calibration logs

### Record Management
- Record entries at the time the activity occurs
- Corrections are struck through, initialed, and dated; never erased
- Records are retained for the period required by applicable regulation
- All documents carry a version number and effective date`

const fallbackGeneric = `## Standard Operating Procedure

This section establishes the standard process requirements for this operational area.

### Requirements
- All activities must follow documented procedures
- Personnel must be trained and qualified for their assigned tasks
- Deviations must be documented and reviewed by management
- Records must be maintained to demonstrate compliance

### Responsibilities
Management is responsible for maintaining this procedure, providing resources, and verifying compliance. All staff are responsible for following the documented process and reporting problems promptly.`
