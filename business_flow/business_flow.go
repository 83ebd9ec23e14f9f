package businessflow

import (
	"strings"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func parseUUID(value string, sentinel error) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, NewBusinessError("INVALID_ID", sentinel.Error(), sentinel)
	}
	return id, nil
}

func parseGrade(value string) (models.Grade, error) {
	grade := models.Grade(value)
	for _, g := range models.Grades {
		if g == grade {
			return grade, nil
		}
	}
	return "", NewBusinessError("INVALID_GRADE", "Grade must be one of excellent, good, fair, poor, damaged", ErrInvalidGrade)
}

// ToTicketModel converts the intake form into a ticket ready for the store
func ToTicketModel(req *dto.CreateTicketRequest) (models.RepairTicket, error) {
	customerID, err := parseUUID(req.CustomerID, ErrInvalidCustomerID)
	if err != nil {
		return models.RepairTicket{}, err
	}

	ticket := models.RepairTicket{
		CustomerID:       customerID,
		DeviceType:       req.DeviceType,
		DeviceModel:      req.DeviceModel,
		SerialNumber:     req.SerialNumber,
		IssueDescription: req.IssueDescription,
		EstimatedCost:    req.EstimatedCost,
		ActualCost:       req.ActualCost,
		Status:           models.RepairStatus(req.Status),
		Priority:         models.Priority(req.Priority),
		GradeNotes:       req.GradeNotes,
		Images:           pq.StringArray(req.Images),
	}

	if req.Grade != nil {
		grade, err := parseGrade(*req.Grade)
		if err != nil {
			return models.RepairTicket{}, err
		}
		ticket.Grade = &grade
	}

	if req.TechnicianID != nil {
		techID, err := parseUUID(*req.TechnicianID, ErrInvalidTechnicianID)
		if err != nil {
			return models.RepairTicket{}, err
		}
		ticket.TechnicianID = &techID
	}

	return ticket, nil
}

// ToTicketPatch converts a sparse update request into a store patch
func ToTicketPatch(req *dto.UpdateTicketRequest) (models.TicketPatch, error) {
	patch := models.TicketPatch{
		DeviceType:       req.DeviceType,
		DeviceModel:      req.DeviceModel,
		SerialNumber:     req.SerialNumber,
		IssueDescription: req.IssueDescription,
		EstimatedCost:    req.EstimatedCost,
		ActualCost:       req.ActualCost,
		GradeNotes:       req.GradeNotes,
		Images:           req.Images,
	}

	if req.CustomerID != nil {
		id, err := parseUUID(*req.CustomerID, ErrInvalidCustomerID)
		if err != nil {
			return models.TicketPatch{}, err
		}
		patch.CustomerID = &id
	}
	if req.Status != nil {
		status := models.RepairStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		patch.Priority = &priority
	}

	if req.Grade.Set {
		patch.Grade = models.Null[models.Grade]()
		if req.Grade.Value != nil && *req.Grade.Value != "" {
			grade, err := parseGrade(*req.Grade.Value)
			if err != nil {
				return models.TicketPatch{}, err
			}
			patch.Grade = models.Some(grade)
		}
	}

	if req.TechnicianID.Set {
		patch.TechnicianID = models.Null[uuid.UUID]()
		if req.TechnicianID.Value != nil && *req.TechnicianID.Value != "" {
			id, err := parseUUID(*req.TechnicianID.Value, ErrInvalidTechnicianID)
			if err != nil {
				return models.TicketPatch{}, err
			}
			patch.TechnicianID = models.Some(id)
		}
	}

	return patch, nil
}

func ToCustomerModel(req *dto.CreateCustomerRequest) models.Customer {
	return models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

func ToCustomerPatch(req *dto.UpdateCustomerRequest) models.CustomerPatch {
	return models.CustomerPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

func ToTechnicianModel(req *dto.CreateTechnicianRequest) models.Technician {
	return models.Technician{
		Name:        req.Name,
		Email:       req.Email,
		Specialties: pq.StringArray(req.Specialties),
	}
}

func ToTechnicianPatch(req *dto.UpdateTechnicianRequest) models.TechnicianPatch {
	return models.TechnicianPatch{
		Name:        req.Name,
		Email:       req.Email,
		Specialties: req.Specialties,
	}
}
