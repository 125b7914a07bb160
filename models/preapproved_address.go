package models

// PreapprovedAddress exempts an address from the duplicate-address dedup
// rule, typically an affiliate office or staff center where many applicants
// legitimately share an address. Matching uses addr1 + zip_code only; city
// and state are stored for clarity in the staff portal.
type PreapprovedAddress struct {
	PreapprovedAddressID int    `gorm:"primaryKey;autoIncrement;column:preapproved_address_id" json:"preapproved_address_id"`
	Addr1                string `gorm:"column:addr1;size:200;uniqueIndex:idx_addr1_zip" json:"addr1"`
	ZipCode              string `gorm:"column:zip_code;size:5;uniqueIndex:idx_addr1_zip" json:"zip_code"`

	City  string `gorm:"column:city;size:100" json:"city"`
	State string `gorm:"column:state;size:100" json:"state"`
	Note  string `gorm:"column:note;size:200" json:"note"`
}

func (PreapprovedAddress) TableName() string { return "preapproved_addresses" }
