package faq

// Default is the built-in question bank of Thai Binh University.
// Loaded once at startup; never mutated at runtime.
var Default = []Item{
	{
		Question: "Điểm chuẩn năm nay là bao nhiêu?",
		Answer: "Điểm chuẩn được công bố sau kỳ thi THPT Quốc gia. Để biết điểm chuẩn cụ thể cho từng ngành, bạn có thể:\n\n" +
			"📌 Truy cập website: www.tbu.edu.vn\n📌 Kiểm tra thông tin tuyển sinh\n📌 Liên hệ Phòng Đào tạo",
		Keywords: []string{"điểm chuẩn", "điểm sàn", "điểm thi", "ngưỡng"},
		Category: CategoryAdmission,
	},
	{
		Question: "Học phí như thế nào?",
		Answer: "Học phí được quy định theo từng năm học và từng ngành đào tạo. Chi tiết học phí được công bố trên website trường.\n\n" +
			"💰 **Xem học phí tại:**\n• Website trường\n• Phòng Đào tạo\n• Thông báo tuyển sinh",
		Keywords: []string{"học phí", "tiền học", "phí đào tạo", "chi phí"},
		Category: CategoryAdmission,
	},
	{
		Question: "Có những ngành đào tạo nào?",
		Answer: "Trường Đại học Thái Bình đào tạo đa ngành các lĩnh vực:\n\n" +
			"📚 **Các ngành chính:**\n• Khoa Kinh tế\n• Khoa Quản trị\n• Khoa Ngôn ngữ\n• Khoa Công nghệ thông tin\n• Khoa Cơ khí - Tự động hóa\n• Khoa Nông nghiệp\n\n" +
			"📌 Chi tiết từng ngành xem tại website trường.",
		Keywords: []string{"ngành", "chuyên ngành", "đào tạo", "khoa", "học ngành gì"},
		Category: CategoryAcademic,
	},
	{
		Question: "Thời gian học bao lâu?",
		Answer: "⏰ **Thời gian đào tạo:**\n\n• Chương trình đại học: **4 năm**\n• Chương trình cao học: **2 năm**\n• Chương trình liên thông: Theo quy định\n\n" +
			"Giờ học thường:\n• Thứ 2 - Thứ 6: 8:00 - 17:00\n• Thứ 7: 8:00 - 12:00",
		Keywords: []string{"thời gian", "bao lâu", "năm học", "giờ học"},
		Category: CategoryAcademic,
	},
	{
		Question: "Địa chỉ trường ở đâu?",
		Answer: "📍 **Địa chỉ:**\nTrường Đại học Thái Bình\nTỉnh Thái Bình\n\n" +
			"📧 **Email:** contact@tbu.edu.vn\n\nBạn có thể đến trường làm việc vào giờ hành chính.",
		Keywords: []string{"địa chỉ", "ở đâu", "nằm ở đâu", "vị trí"},
		Category: CategoryGeneral,
	},
	{
		Question: "Nhà trường có KTX không?",
		Answer: "🏢 **Khuôn viên & Nhà ở:**\n\nTrường có ký túc xá cho sinh viên:\n• KTX trường: Có phòng 2-4 người\n• Ký túc xá: Có các khu vực gần trường\n\n" +
			"💡 Để biết chi tiết giá và đăng ký, liên hệ Phòng Công tác sinh viên.",
		Keywords: []string{"nhà ở", "ktx", "ký túc xá", "khuôn viên"},
		Category: CategoryFacilities,
	},
	{
		Question: "Làm thế nào để đăng ký?",
		Answer: "📝 **Quy trình đăng ký tuyển sinh:**\n\n" +
			"1️⃣ Chuẩn bị hồ sơ:\n• Bảng điểm THPT\n• CCCD/CMND\n• Hồ sơ học tập (bản sao công chứng)\n• Ảnh thẻ (3x4)\n\n" +
			"2️⃣ Nộp hồ sơ:\n• Trực tiếp tại Phòng Đào tạo\n• Hoặc đăng ký online qua website\n\n" +
			"3️⃣ Theo dõi thông báo:\n• Kết quả xét tuyển\n• Thông báo nhập học",
		Keywords: []string{"đăng ký", "nhập học", "tuyển", "nộp hồ sơ", "làm sao"},
		Category: CategoryAdmission,
	},
	{
		Question: "Lịch thi khi nào?",
		Answer: "📅 **Lịch thi:**\n\n• Lịch thi được thông báo trước **2 tuần**\n• Đăng tải trên website trường\n• Hoặc tại bảng tin Phòng Đào tạo\n\n" +
			"💡 Bạn nên theo dõi website để cập nhật thông tin mới nhất.",
		Keywords: []string{"thi", "lịch thi", "bài kiểm tra", "kiểm tra"},
		Category: CategoryAcademic,
	},
	{
		Question: "Xem bảng điểm ở đâu?",
		Answer: "📊 **Tra cứu bảng điểm:**\n\n• Website trường: Đăng nhập hệ thống sinh viên\n• Phòng Đào tạo: Nhận bảng điểm trực tiếp\n\n" +
			"💡 Bảng điểm được cập nhật sau mỗi kỳ thi.",
		Keywords: []string{"bảng điểm", "kết quả học tập", "điểm", "xem điểm"},
		Category: CategoryAcademic,
	},
	{
		Question: "Có học bổng không?",
		Answer: "💰 **Học bổng & Hỗ trợ tài chính:**\n\nTrường có các chính sách hỗ trợ:\n• Học bổng khuyến khích học tập\n• Hỗ trợ sinh viên nghèo vượt khó\n• Học bổng xã hội\n• Học bổng tài năng\n\n" +
			"📌 Chi tiết xem tại thông báo tuyển sinh hoặc liên hệ Phòng Công tác sinh viên.",
		Keywords: []string{"học bổng", "giảm học phí", "trợ cấp"},
		Category: CategoryFacilities,
	},
	{
		Question: "Website trường là gì?",
		Answer: "🌐 **Website chính thức:**\n\nwww.tbu.edu.vn\n\nTại đây bạn có thể tìm:\n• Tin tức & Thông báo\n• Lịch công tác\n• Chương trình đào tạo\n• Thông tin tuyển sinh\n• Hệ thống sinh viên\n• Liên hệ",
		Keywords: []string{"website", "trang web", "web", "tên miền"},
		Category: CategoryGeneral,
	},
	{
		Question: "Giờ làm việc của trường?",
		Answer: "⏰ **Giờ làm việc:**\n\n• Thứ 2 - Thứ 6: **8:00 - 17:00**\n• Thứ 7: **8:00 - 12:00**\n• Chủ nhật: Nghỉ\n\n" +
			"💡 Các phòng ban làm việc theo giờ hành chính của trường.",
		Keywords: []string{"giờ làm việc", "mở cửa", "đóng cửa", "giờ hành chính"},
		Category: CategoryGeneral,
	},
}
