package models

type Customer struct {
	CustomerID        string `bson:"customerId" json:"customerId"`
	FullName          string `bson:"fullName" json:"fullName"`
	PhoneNumber       string `bson:"phoneNumber" json:"phoneNumber"`
	EmailAddress      string `bson:"emailAddress" json:"emailAddress"`
	PreferredLanguage string `bson:"preferredLanguage" json:"preferredLanguage"`
	AccountStatus     string `bson:"accountStatus" json:"accountStatus"`
}

type Facility struct {
	PropertyID   string `bson:"propertyId" json:"propertyId"`
	CustomerID   string `bson:"customerId" json:"customerId"`
	BuildingName string `bson:"buildingName" json:"buildingName"`
	UnitNumber   string `bson:"unitNumber,omitempty" json:"unitNumber,omitempty"`
	Floor        string `bson:"floor,omitempty" json:"floor,omitempty"`
	FullAddress  string `bson:"fullAddress" json:"fullAddress"`
	City         string `bson:"city" json:"city"`
	Emirate      string `bson:"emirate" json:"emirate"`
	AreaZone     string `bson:"areaZone" json:"areaZone"`
	PropertyType string `bson:"propertyType" json:"propertyType"`
}

// DisplayLocation is the short form read back to the caller.
func (f Facility) DisplayLocation() string {
	loc := f.BuildingName
	if f.UnitNumber != "" {
		loc += ", Unit " + f.UnitNumber
	}
	if f.AreaZone != "" {
		loc += ", " + f.AreaZone
	}
	return loc
}
