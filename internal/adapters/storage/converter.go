package storage

import (
	"github.com/netscenehq/netscene/internal/core/domain"
)

func toRunModel(report domain.WorkflowReport) RunModel {
	run := RunModel{
		RunID:      report.RunID,
		Status:     string(report.Status),
		Started:    report.Started,
		Finished:   report.Finished,
		ErrorCount: len(report.Errors),
	}
	for _, e := range report.Errors {
		run.Errors = append(run.Errors, ErrorModel{
			RunID:   report.RunID,
			Step:    string(e.Step),
			Item:    e.Item,
			Message: e.Message,
		})
	}
	if report.Scene == nil {
		return run
	}
	run.Enhanced = report.Scene.Enhanced
	for i, d := range report.Scene.Devices {
		run.Devices = append(run.Devices, DeviceModel{
			RunID:      report.RunID,
			DeviceID:   d.ID,
			MAC:        d.MAC,
			Serial:     d.Serial,
			IP:         d.IP,
			Name:       d.Name,
			Vendor:     d.VendorName,
			Type:       string(d.Type),
			Confidence: int(d.Confidence),
			Model:      d.Meta(domain.MetaModel),
			Hostname:   d.Meta(domain.MetaHostname),
			FirstSeen:  d.FirstSeen,
			LastSeen:   d.LastSeen,
			Position:   i,
		})
	}
	for _, e := range report.Scene.Edges {
		run.Edges = append(run.Edges, EdgeModel{
			RunID:  report.RunID,
			From:   e.From,
			To:     e.To,
			Type:   string(e.Type),
			Status: string(e.Status),
		})
	}
	return run
}

func fromRunModel(run RunModel) domain.WorkflowReport {
	report := domain.WorkflowReport{
		RunID:    run.RunID,
		Status:   domain.RunStatus(run.Status),
		Started:  run.Started,
		Finished: run.Finished,
	}
	for _, e := range run.Errors {
		report.Errors = append(report.Errors, domain.ItemError{
			Step:    domain.WorkflowStep(e.Step),
			Item:    e.Item,
			Message: e.Message,
		})
	}
	if len(run.Devices) == 0 && len(run.Edges) == 0 {
		return report
	}
	scene := &domain.Scene{Enhanced: run.Enhanced, GeneratedAt: run.Finished}
	for _, d := range run.Devices {
		dev := domain.Device{
			ID:         d.DeviceID,
			MAC:        d.MAC,
			Serial:     d.Serial,
			IP:         d.IP,
			Name:       d.Name,
			VendorName: d.Vendor,
			Type:       domain.DeviceType(d.Type),
			Confidence: domain.Confidence(d.Confidence),
			FirstSeen:  d.FirstSeen,
			LastSeen:   d.LastSeen,
		}
		if d.Model != "" || d.Hostname != "" {
			dev.Metadata = map[string]string{}
			if d.Model != "" {
				dev.Metadata[domain.MetaModel] = d.Model
			}
			if d.Hostname != "" {
				dev.Metadata[domain.MetaHostname] = d.Hostname
			}
		}
		scene.Devices = append(scene.Devices, dev)
	}
	for _, e := range run.Edges {
		scene.Edges = append(scene.Edges, domain.Edge{
			From:   e.From,
			To:     e.To,
			Type:   domain.LinkType(e.Type),
			Status: domain.EdgeStatus(e.Status),
		})
	}
	report.Scene = scene
	return report
}
