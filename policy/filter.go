package policy

import "teamcal/models"

// FilterEvents keeps the events the principal may see in a listing.
func FilterEvents(p Principal, events []models.Event) []models.Event {
	if p.SeesAll() {
		return events
	}
	visible := make([]models.Event, 0, len(events))
	for i := range events {
		if CanReadEvent(p, &events[i]) {
			visible = append(visible, events[i])
		}
	}
	return visible
}

// FilterProjects keeps the projects the principal owns or belongs to.
func FilterProjects(p Principal, projects []models.Project) []models.Project {
	if p.SeesAll() {
		return projects
	}
	visible := make([]models.Project, 0, len(projects))
	for i := range projects {
		if CanReadProject(p, &projects[i]) {
			visible = append(visible, projects[i])
		}
	}
	return visible
}
